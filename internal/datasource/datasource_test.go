package datasource

import (
	"context"
	"dashcache/internal/cache"
	"dashcache/internal/dataframe"
	"dashcache/internal/models"
	"dashcache/internal/paginator"
	"dashcache/internal/timerange"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-05-28T00:00:00Z
var t0 = time.UnixMilli(1716854400000).UTC()

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type recordingExecutor struct {
	mu       sync.Mutex
	requests []models.Request
	respond  func(models.Request) (models.Response, error)
}

func (e *recordingExecutor) ExecutePage(_ context.Context, r models.Request) (models.Response, error) {
	e.mu.Lock()
	e.requests = append(e.requests, r)
	e.mu.Unlock()
	return e.respond(r)
}

// seriesExecutor answers history queries with one row per minute of the range.
func seriesExecutor() *recordingExecutor {
	return &recordingExecutor{respond: func(r models.Request) (models.Response, error) {
		var frames []dataframe.Frame
		for _, q := range r.Targets {
			var times []time.Time
			var values []float64
			for ts := r.Range.From.Truncate(time.Minute).Add(time.Minute); !ts.After(r.Range.To); ts = ts.Add(time.Minute) {
				times = append(times, ts)
				values = append(values, float64(ts.Unix()))
			}
			frames = append(frames, dataframe.Frame{
				Name:  "series",
				RefID: q.RefID,
				Fields: []dataframe.Field{
					dataframe.NewTimeField(times...),
					dataframe.NewNumberField("value", "", values...),
				},
			})
		}
		return models.Response{State: models.LoadingStateDone, Frames: frames}, nil
	}}
}

func lastHourRequest() models.Request {
	return models.Request{
		Targets: []models.Query{{
			RefID:     "A",
			QueryType: models.QueryTypeGetMetricHistory,
			Metrics:   []models.Metric{{MetricID: "cpu"}},
		}},
		Range: timerange.TimeRange{
			From: t0,
			To:   t0.Add(time.Hour),
			Raw:  timerange.RawTimeRange{From: "now-1h", To: "now"},
		},
	}
}

func newCachedDataSource(executor paginator.Executor) *DataSource {
	rangeCache := cache.NewRelativeRangeCache(cache.NewMemStore(testLogger()), timerange.NewAnalyzer(0), testLogger())
	return New(executor, Options{Cache: rangeCache}, testLogger())
}

func drain(ch <-chan models.Response) []models.Response {
	var out []models.Response
	for rsp := range ch {
		out = append(out, rsp)
	}
	return out
}

func TestDataSource_FilterQuery(t *testing.T) {
	ds := New(nil, Options{}, testLogger())

	tests := []struct {
		name     string
		query    models.Query
		expected bool
	}{
		{name: "hidden", query: models.Query{Hide: true, QueryType: models.QueryTypeListMetrics}},
		{name: "no query type", query: models.Query{RefID: "A"}},
		{name: "metric query without metrics", query: models.Query{QueryType: models.QueryTypeGetMetricHistory}},
		{
			name:     "metric query with metrics",
			query:    models.Query{QueryType: models.QueryTypeGetMetricValue, Metrics: []models.Metric{{MetricID: "cpu"}}},
			expected: true,
		},
		{name: "listing query", query: models.Query{QueryType: models.QueryTypeListDimensionKeys}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ds.FilterQuery(tt.query))
		})
	}
}

func TestDataSource_QueryServesPrefixFromCache(t *testing.T) {
	executor := seriesExecutor()
	ds := newCachedDataSource(executor)
	ctx := context.Background()

	first := drain(ds.Query(ctx, lastHourRequest()))
	require.Len(t, first, 1)
	require.Equal(t, models.LoadingStateDone, first[0].State)
	assert.Equal(t, "iot.1000", first[0].Key)
	assert.Equal(t, 60, first[0].Frames[0].Rows())
	assert.Equal(t, 1, ds.Cache().Size(ctx))

	second := drain(ds.Query(ctx, lastHourRequest()))
	require.Len(t, second, 2)
	assert.Equal(t, models.LoadingStateStreaming, second[0].State)
	assert.Equal(t, 45, second[0].Frames[0].Rows(), "cached prefix up to the refresh window")
	assert.Equal(t, models.LoadingStateDone, second[1].State)
	assert.Equal(t, "iot.1001", second[1].Key)
	assert.Equal(t, 60, second[1].Frames[0].Rows())

	require.Len(t, executor.requests, 2)
	refresh := executor.requests[1]
	assert.Equal(t, t0.Add(45*time.Minute), refresh.Range.From)
	assert.Equal(t, t0.Add(time.Hour), refresh.Range.To)
}

func TestDataSource_QueryWithoutCache(t *testing.T) {
	executor := seriesExecutor()
	ds := New(executor, Options{IDs: NewCounterIDGenerator("panel", 1)}, testLogger())
	ctx := context.Background()

	drain(ds.Query(ctx, lastHourRequest()))
	got := drain(ds.Query(ctx, lastHourRequest()))

	require.Len(t, got, 1)
	assert.Equal(t, "panel.2", got[0].Key)
	require.Len(t, executor.requests, 2)
	assert.Equal(t, t0, executor.requests[1].Range.From)
	assert.Nil(t, ds.Cache())
}

func TestDataSource_QueryKeepsRequestID(t *testing.T) {
	ds := New(seriesExecutor(), Options{}, testLogger())

	request := lastHourRequest()
	request.RequestID = "Q112"
	got := drain(ds.Query(context.Background(), request))

	require.Len(t, got, 1)
	assert.Equal(t, "Q112", got[0].Key)
}

func TestDataSource_QueryWithoutTargets(t *testing.T) {
	executor := seriesExecutor()
	ds := New(executor, Options{}, testLogger())

	request := lastHourRequest()
	request.Targets[0].Hide = true
	got := drain(ds.Query(context.Background(), request))

	require.Len(t, got, 1)
	assert.Equal(t, models.LoadingStateDone, got[0].State)
	assert.Empty(t, got[0].Frames)
	assert.Empty(t, executor.requests)
}

func TestDataSource_ErrorsAreNotCached(t *testing.T) {
	executor := &recordingExecutor{respond: func(models.Request) (models.Response, error) {
		return models.Response{}, errors.New("backend unavailable")
	}}
	ds := newCachedDataSource(executor)
	ctx := context.Background()

	rsp, err := Collect(ds.Query(ctx, lastHourRequest()))
	require.Error(t, err)
	assert.Equal(t, models.LoadingStateError, rsp.State)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.Equal(t, 0, ds.Cache().Size(ctx))
}

func TestDataSource_ListDimensionValues(t *testing.T) {
	executor := &recordingExecutor{respond: func(r models.Request) (models.Response, error) {
		return models.Response{
			State: models.LoadingStateDone,
			Frames: []dataframe.Frame{{
				RefID:  r.Targets[0].RefID,
				Fields: []dataframe.Field{dataframe.NewStringField(dataframe.ListValueFieldName, "turbine-1", "turbine-2")},
			}},
		}, nil
	}}
	ds := New(executor, Options{}, testLogger())

	values, err := ds.ListDimensionValues(context.Background(), "asset", "turb", ParseDimensions("site=north"))
	require.NoError(t, err)
	assert.Equal(t, []string{"turbine-1", "turbine-2"}, values)

	require.Len(t, executor.requests, 1)
	q := executor.requests[0].Targets[0]
	assert.Equal(t, models.QueryTypeListDimensionValues, q.QueryType)
	assert.Equal(t, "asset", q.DimensionKey)
	assert.Equal(t, "turb", q.Filter)
	assert.Equal(t, []models.Dimension{{Key: "site", Value: "north"}}, q.Dimensions)
}

func TestDataSource_ListMetricsWithoutFrames(t *testing.T) {
	executor := &recordingExecutor{respond: func(models.Request) (models.Response, error) {
		return models.Response{State: models.LoadingStateDone}, nil
	}}
	ds := New(executor, Options{}, testLogger())

	_, err := ds.ListMetrics(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCollect(t *testing.T) {
	stream := func(rsps ...models.Response) <-chan models.Response {
		ch := make(chan models.Response, len(rsps))
		for _, r := range rsps {
			ch <- r
		}
		close(ch)
		return ch
	}

	streaming := models.Response{Key: "k", State: models.LoadingStateStreaming}
	done := models.Response{Key: "k", State: models.LoadingStateDone}
	failed := models.Response{Key: "k", State: models.LoadingStateError, Error: "boom"}

	rsp, err := Collect(stream(streaming, done))
	assert.NoError(t, err)
	assert.Equal(t, done, rsp)

	_, err = Collect(stream(streaming, failed))
	assert.ErrorContains(t, err, "boom")

	_, err = Collect(stream(streaming))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = Collect(stream())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDimensions(t *testing.T) {
	tests := []struct {
		input    string
		expected []models.Dimension
	}{
		{input: "", expected: nil},
		{input: "site=north", expected: []models.Dimension{{Key: "site", Value: "north"}}},
		{
			input:    "site=north;asset=turbine-1",
			expected: []models.Dimension{{Key: "site", Value: "north"}, {Key: "asset", Value: "turbine-1"}},
		},
		{input: "site;a=b=c", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDimensions(tt.input))
		})
	}
}

func TestDisplayText(t *testing.T) {
	q := models.Query{
		Dimensions: []models.Dimension{{Key: "site", Value: "north"}, {Key: "asset", Value: "t1"}},
		Metrics:    []models.Metric{{MetricID: "rps", MetricName: "RotationsPerSecond"}, {MetricID: "temp"}},
	}
	assert.Equal(t, "[site=north,asset=t1] RotationsPerSecond&temp", DisplayText(q))
	assert.Equal(t, "[]", DisplayText(models.Query{}))
}

func TestIDGenerators(t *testing.T) {
	counter := NewCounterIDGenerator("iot", 1000)
	assert.Equal(t, "iot.1000", counter.NextID())
	assert.Equal(t, "iot.1001", counter.NextID())

	other := NewCounterIDGenerator("iot", 1000)
	assert.Equal(t, "iot.1000", other.NextID(), "counters are per instance")

	id := UUIDGenerator{Prefix: "panel"}.NextID()
	require.True(t, strings.HasPrefix(id, "panel."))
	_, err := uuid.Parse(strings.TrimPrefix(id, "panel."))
	assert.NoError(t, err)

	_, err = uuid.Parse(UUIDGenerator{}.NextID())
	assert.NoError(t, err)
}
