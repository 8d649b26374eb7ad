package server

import (
	"dashcache/internal/cache"
	"dashcache/internal/config"
	"dashcache/internal/data"
	"dashcache/internal/datasource"
	"dashcache/internal/timerange"
	"fmt"
	"log/slog"
)

// NewDataSource wires the Prometheus backend, the relative range cache and the
// request id generator described by cfg.
func NewDataSource(cfg *config.Config, logger *slog.Logger) (*datasource.DataSource, error) {
	var username, password string
	if cfg.Data.BasicAuth != nil {
		username = cfg.Data.BasicAuth.Username
		password = cfg.Data.BasicAuth.Password
	}

	client, err := data.NewPrometheusClient(cfg.Data.PrometheusURL, username, password, cfg.Data.Timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}

	opts := datasource.Options{
		IDs:      requestIDs(cfg.Data.RequestIDs),
		MaxPages: cfg.Pagination.MaxPages,
	}

	if cfg.Cache.IsEnabled() {
		opts.Cache = cache.NewRelativeRangeCache(
			cache.NewMemStore(logger),
			timerange.NewAnalyzer(cfg.Cache.RefreshWindow),
			logger,
		)
	} else {
		logger.Info("relative range cache disabled")
	}

	executor := data.NewPageExecutor(client, cfg.Data.PageWindow, logger)
	return datasource.New(executor, opts, logger), nil
}

func requestIDs(kind string) datasource.IDGenerator {
	if kind == config.RequestIDsUUID {
		return datasource.UUIDGenerator{Prefix: "iot"}
	}
	return datasource.NewCounterIDGenerator("iot", 1000)
}
