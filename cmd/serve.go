package cmd

import (
	"dashcache/internal/server"
	"dashcache/internal/version"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the panel refresh job",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := server.SetupLogger(cfg)
	logger.Info("starting dashcache", "version", version.GetFullVersion())

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	return srv.Start()
}
