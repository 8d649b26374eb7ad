package data

import (
	"context"
	"dashcache/internal/dataframe"
	"dashcache/internal/metrics"
	"dashcache/internal/models"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/common/model"
)

// ValueField names the value column of series frames without a metric name.
const ValueField = "value"

// UnitOption is the query option holding the unit of the value column.
const UnitOption = "unit"

// PageExecutor runs one page of a request against Prometheus.
type PageExecutor struct {
	client     *PrometheusClient
	pageWindow time.Duration
	logger     *slog.Logger
}

func NewPageExecutor(client *PrometheusClient, pageWindow time.Duration, logger *slog.Logger) *PageExecutor {
	return &PageExecutor{
		client:     client,
		pageWindow: pageWindow,
		logger:     logger,
	}
}

// ExecutePage runs every target of request. A failing target turns the page
// into an Error response that still carries the frames of the targets run
// before it.
func (e *PageExecutor) ExecutePage(ctx context.Context, request models.Request) (models.Response, error) {
	var frames []dataframe.Frame

	for _, q := range request.Targets {
		start := time.Now()
		queryFrames, err := e.executeQuery(ctx, request, q)
		metrics.PageFetchDuration.WithLabelValues(string(q.QueryType), metrics.DataSourceTypePrometheus).Observe(time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return models.Response{}, ctx.Err()
			}

			metrics.PageFetchErrors.WithLabelValues(string(q.QueryType), metrics.DataSourceTypePrometheus).Inc()
			e.logger.Error("failed to execute query",
				"request_id", request.RequestID,
				"ref_id", q.RefID,
				"query_type", q.QueryType,
				"error", err)

			return models.Response{
				Key:    request.RequestID,
				State:  models.LoadingStateError,
				Frames: frames,
				Error:  fmt.Sprintf("query %s: %v", q.RefID, err),
			}, nil
		}

		frames = append(frames, queryFrames...)
	}

	return models.Response{Key: request.RequestID, State: models.LoadingStateDone, Frames: frames}, nil
}

func (e *PageExecutor) executeQuery(ctx context.Context, request models.Request, q models.Query) ([]dataframe.Frame, error) {
	switch q.QueryType {
	case models.QueryTypeGetMetricHistory, models.QueryTypeGetMetricAggregate:
		return e.executeRangeQuery(ctx, request, q)
	case models.QueryTypeGetMetricValue:
		return e.executeValueQuery(ctx, request, q)
	case models.QueryTypeListMetrics:
		return e.executeListQuery(request, q, func(matches []string, start, end time.Time) ([]string, error) {
			return e.client.LabelValues(ctx, model.MetricNameLabel, matches, start, end)
		})
	case models.QueryTypeListDimensionKeys:
		return e.executeListQuery(request, q, func(matches []string, start, end time.Time) ([]string, error) {
			names, err := e.client.LabelNames(ctx, matches, start, end)
			if err != nil {
				return nil, err
			}
			return withoutSelected(names, q.Dimensions), nil
		})
	case models.QueryTypeListDimensionValues:
		if q.DimensionKey == "" {
			return nil, fmt.Errorf("dimension key is required")
		}
		return e.executeListQuery(request, q, func(matches []string, start, end time.Time) ([]string, error) {
			return e.client.LabelValues(ctx, q.DimensionKey, matches, start, end)
		})
	default:
		return nil, fmt.Errorf("unsupported query type %q", q.QueryType)
	}
}

func (e *PageExecutor) executeRangeQuery(ctx context.Context, request models.Request, q models.Query) ([]dataframe.Frame, error) {
	r := request.Range.Absolute()
	step := stepFor(r, request.Interval, request.MaxDataPoints)

	pr, token, err := pageRange(r, q.NextToken, e.pageWindow, step, q.IsDescending())
	if err != nil {
		return nil, err
	}

	var frames []dataframe.Frame
	for _, metric := range q.Metrics {
		expr, err := selector(metric.MetricID, q.Dimensions)
		if err != nil {
			return nil, err
		}

		if q.QueryType == models.QueryTypeGetMetricAggregate {
			expr, err = aggregateExpr(expr, q.AggregateType, step)
			if err != nil {
				return nil, err
			}
		}

		e.logger.Debug("executing range query",
			"request_id", request.RequestID,
			"ref_id", q.RefID,
			"query", expr,
			"start", pr.Start,
			"end", pr.End,
			"step", pr.Step)

		value, err := e.client.QueryRange(ctx, expr, pr)
		if err != nil {
			return nil, err
		}

		matrix, ok := value.(model.Matrix)
		if !ok {
			return nil, fmt.Errorf("range query returned %s, expected matrix", value.Type())
		}

		metricFrames := matrixFrames(q, metric, matrix)
		if len(metricFrames) == 0 {
			// an empty frame still carries the token to the paginator
			metricFrames = []dataframe.Frame{seriesFrame(q, metric, seriesName(q.DisplayName, metric.MetricID, dimensionMap(q.Dimensions), nil), nil, nil)}
		}

		for i := range metricFrames {
			metricFrames[i].Meta = &dataframe.FrameMeta{NextToken: token, ExecutedQuery: expr}
		}
		frames = append(frames, metricFrames...)
	}

	return frames, nil
}

func (e *PageExecutor) executeValueQuery(ctx context.Context, request models.Request, q models.Query) ([]dataframe.Frame, error) {
	at := request.Range.To
	if at.IsZero() {
		at = time.Now()
	}

	var frames []dataframe.Frame
	for _, metric := range q.Metrics {
		expr, err := selector(metric.MetricID, q.Dimensions)
		if err != nil {
			return nil, err
		}

		value, err := e.client.Query(ctx, expr, at)
		if err != nil {
			return nil, err
		}

		vector, ok := value.(model.Vector)
		if !ok {
			return nil, fmt.Errorf("instant query returned %s, expected vector", value.Type())
		}

		dims := dimensionMap(q.Dimensions)
		for _, sample := range vector {
			name := seriesName(q.DisplayName, metric.MetricID, dims, sample.Metric)
			frame := seriesFrame(q, metric, name,
				[]time.Time{sample.Timestamp.Time().UTC()},
				[]float64{float64(sample.Value)})
			frame.Meta = &dataframe.FrameMeta{ExecutedQuery: expr}
			frames = append(frames, frame)
		}
	}

	return frames, nil
}

type listFunc func(matches []string, start, end time.Time) ([]string, error)

func (e *PageExecutor) executeListQuery(request models.Request, q models.Query, list listFunc) ([]dataframe.Frame, error) {
	var metric string
	if len(q.Metrics) > 0 {
		metric = q.Metrics[0].MetricID
	}

	matches, err := matchSelectors(metric, q.Dimensions)
	if err != nil {
		return nil, err
	}

	values, err := list(matches, request.Range.From, request.Range.To)
	if err != nil {
		return nil, err
	}

	values = filterValues(values, q.Filter)

	return []dataframe.Frame{{
		Name:   string(q.QueryType),
		RefID:  q.RefID,
		Fields: []dataframe.Field{dataframe.NewStringField(dataframe.ListValueFieldName, values...)},
	}}, nil
}

func matrixFrames(q models.Query, metric models.Metric, matrix model.Matrix) []dataframe.Frame {
	dims := dimensionMap(q.Dimensions)
	frames := make([]dataframe.Frame, 0, len(matrix))

	for _, stream := range matrix {
		times := make([]time.Time, len(stream.Values))
		values := make([]float64, len(stream.Values))
		for i, pair := range stream.Values {
			times[i] = pair.Timestamp.Time().UTC()
			values[i] = float64(pair.Value)
		}

		frame := seriesFrame(q, metric, seriesName(q.DisplayName, metric.MetricID, dims, stream.Metric), times, values)
		if q.IsDescending() {
			frame = reversed(frame)
		}
		frames = append(frames, frame)
	}

	return frames
}

func seriesFrame(q models.Query, metric models.Metric, name string, times []time.Time, values []float64) dataframe.Frame {
	valueName := metric.MetricName
	if valueName == "" {
		valueName = ValueField
	}

	return dataframe.Frame{
		Name:  name,
		RefID: q.RefID,
		Fields: []dataframe.Field{
			dataframe.NewTimeField(times...),
			dataframe.NewNumberField(valueName, q.QueryOptions[UnitOption], values...),
		},
	}
}

func reversed(frame dataframe.Frame) dataframe.Frame {
	out := frame
	out.Fields = make([]dataframe.Field, len(frame.Fields))
	for i, f := range frame.Fields {
		f.Values = f.Values.Reverse()
		out.Fields[i] = f
	}
	return out
}

func dimensionMap(dims []models.Dimension) map[string]string {
	out := make(map[string]string, len(dims))
	for _, d := range dims {
		out[d.Key] = d.Value
	}
	return out
}

func withoutSelected(names []string, selected []models.Dimension) []string {
	skip := dimensionMap(selected)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == model.MetricNameLabel {
			continue
		}
		if _, ok := skip[n]; ok {
			continue
		}
		out = append(out, n)
	}
	return out
}

// filterValues keeps the values containing filter, ignoring case.
func filterValues(values []string, filter string) []string {
	if filter == "" {
		return values
	}

	filter = strings.ToLower(filter)
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), filter) {
			out = append(out, v)
		}
	}
	return out
}
