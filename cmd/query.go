package cmd

import (
	"dashcache/internal/datasource"
	"dashcache/internal/models"
	"dashcache/internal/server"
	"dashcache/internal/timerange"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one query against the backend and print the result",
	Long: `Run one query through the paginator and print every streamed emission.

Examples:
  dashcache query --metric turbine_rpm --dimensions "site=north" --from now-6h
  dashcache query --type GetMetricAggregate --aggregate MAXIMUM --metric turbine_rpm
  dashcache query --type ListMetrics --filter turbine`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	addQueryFlags(queryCmd)
}

func addQueryFlags(c *cobra.Command) {
	c.Flags().String("type", string(models.QueryTypeGetMetricHistory), "query type")
	c.Flags().StringSlice("metric", nil, "metric id, repeatable")
	c.Flags().String("dimensions", "", `dimensions as "key=value;key2=value2"`)
	c.Flags().String("dimension-key", "", "dimension key for ListDimensionValues")
	c.Flags().String("filter", "", "filter for listing queries")
	c.Flags().String("aggregate", "", "aggregate for GetMetricAggregate (AVERAGE, MAXIMUM, MINIMUM)")
	c.Flags().Bool("descending", false, "page from the end of the range backwards")
	c.Flags().String("from", "now-1h", "start of the range")
	c.Flags().String("to", timerange.Now, "end of the range")
	c.Flags().Int64("max-data-points", 0, "maximum data points per series (default from config)")
	c.Flags().Bool("quiet", false, "only print the final response")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	q, err := queryFromFlags(cmd)
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	r, err := timerange.Parse(timerange.RawTimeRange{From: from, To: to}, time.Now())
	if err != nil {
		return err
	}

	maxDataPoints, _ := cmd.Flags().GetInt64("max-data-points")
	if maxDataPoints <= 0 {
		maxDataPoints = cfg.Data.MaxDataPoints
	}

	logger := server.SetupLogger(cfg)
	ds, err := server.NewDataSource(cfg, logger)
	if err != nil {
		return err
	}

	if !ds.FilterQuery(q) {
		return fmt.Errorf("query %s has nothing to run", datasource.DisplayText(q))
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	var last models.Response
	for rsp := range ds.RunQuery(cmd.Context(), q, models.Request{Range: r, MaxDataPoints: maxDataPoints}) {
		last = rsp
		if quiet && !rsp.IsTerminal() {
			continue
		}
		if err := enc.Encode(rsp); err != nil {
			return err
		}
	}

	if last.State == models.LoadingStateError {
		return fmt.Errorf("query %s failed: %s", last.Key, last.Error)
	}
	return nil
}

func queryFromFlags(cmd *cobra.Command) (models.Query, error) {
	queryType, _ := cmd.Flags().GetString("type")
	metrics, _ := cmd.Flags().GetStringSlice("metric")
	dimensions, _ := cmd.Flags().GetString("dimensions")
	dimensionKey, _ := cmd.Flags().GetString("dimension-key")
	filter, _ := cmd.Flags().GetString("filter")
	aggregate, _ := cmd.Flags().GetString("aggregate")
	descending, _ := cmd.Flags().GetBool("descending")

	q := models.Query{
		RefID:        "A",
		QueryType:    models.QueryType(queryType),
		Dimensions:   datasource.ParseDimensions(dimensions),
		DimensionKey: dimensionKey,
		Filter:       filter,
	}

	if !models.IsKnownQueryType(q.QueryType) {
		return q, fmt.Errorf("unknown query type %q", queryType)
	}

	for _, m := range metrics {
		q.Metrics = append(q.Metrics, models.Metric{MetricID: strings.TrimSpace(m)})
	}

	if q.QueryType == models.QueryTypeGetMetricAggregate {
		q.AggregateType = models.AggregateType(strings.ToUpper(aggregate))
		if q.AggregateType == "" {
			q.AggregateType = models.AggregateAverage
		}
	}

	if descending {
		if !models.IsTimeOrderingQueryType(q.QueryType) {
			return q, fmt.Errorf("--descending only applies to history and aggregate queries")
		}
		q.TimeOrdering = models.TimeOrderDescending
	}

	return q, nil
}
