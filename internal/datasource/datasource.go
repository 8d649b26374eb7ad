package datasource

import (
	"context"
	"dashcache/internal/cache"
	"dashcache/internal/models"
	"dashcache/internal/paginator"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var ErrNoData = errors.New("no data returned")

// DataSource runs panel requests: it filters the targets, serves what it can
// from the relative range cache and pages through the backend for the rest.
type DataSource struct {
	executor paginator.Executor
	cache    *cache.RelativeRangeCache
	ids      IDGenerator
	maxPages int
	logger   *slog.Logger
}

type Options struct {
	// Cache may be nil to disable caching.
	Cache    *cache.RelativeRangeCache
	IDs      IDGenerator
	MaxPages int
}

func New(executor paginator.Executor, opts Options, logger *slog.Logger) *DataSource {
	ids := opts.IDs
	if ids == nil {
		ids = NewCounterIDGenerator("iot", 1000)
	}

	return &DataSource{
		executor: executor,
		cache:    opts.Cache,
		ids:      ids,
		maxPages: opts.MaxPages,
		logger:   logger,
	}
}

// Cache returns the relative range cache, or nil when caching is disabled.
func (d *DataSource) Cache() *cache.RelativeRangeCache {
	return d.cache
}

// FilterQuery reports whether q should be sent to the backend at all.
func (d *DataSource) FilterQuery(q models.Query) bool {
	if q.Hide {
		return false
	}
	if q.QueryType == "" {
		return false
	}
	if !models.IsMetricQuery(q.QueryType) {
		return true
	}
	return len(q.Metrics) > 0
}

// Query runs request and returns its stream of responses. A request without
// an id gets one from the id generator.
func (d *DataSource) Query(ctx context.Context, request models.Request) <-chan models.Response {
	targets := make([]models.Query, 0, len(request.Targets))
	for _, q := range request.Targets {
		if d.FilterQuery(q) {
			targets = append(targets, q)
		}
	}
	request.Targets = targets

	if request.RequestID == "" {
		request.RequestID = d.ids.NextID()
	}

	if len(targets) == 0 {
		out := make(chan models.Response, 1)
		out <- models.Response{Key: request.RequestID, State: models.LoadingStateDone}
		close(out)
		return out
	}

	p := &paginator.Paginator{
		Request:  request,
		Executor: d.executor,
		MaxPages: d.maxPages,
		Logger:   d.logger,
	}

	if d.cache != nil {
		if cached, ok := d.cache.Get(ctx, request); ok {
			p.Request = cached.RefreshRequest
			p.Start = &cached.Start
			p.End = &cached.End
		}

		p.OnComplete = func(ctx context.Context, response models.Response) {
			d.cache.Set(ctx, request, response)
		}
	}

	return p.Stream(ctx)
}

// RunQuery runs a single query with a fresh request id.
func (d *DataSource) RunQuery(ctx context.Context, q models.Query, request models.Request) <-chan models.Response {
	request.RequestID = d.ids.NextID()
	request.Targets = []models.Query{q}
	return d.Query(ctx, request)
}

// Collect waits for the terminal response of a stream. Error responses are
// returned together with an error.
func Collect(ch <-chan models.Response) (models.Response, error) {
	var last models.Response
	received := false
	for rsp := range ch {
		last = rsp
		received = true
	}

	if !received {
		return last, context.Canceled
	}

	switch last.State {
	case models.LoadingStateError:
		return last, fmt.Errorf("request %s failed: %s", last.Key, last.Error)
	case models.LoadingStateDone:
		return last, nil
	default:
		return last, context.Canceled
	}
}

// ParseDimensions reads dimensions written as "key1=value1;key2=value2".
// Malformed pairs are skipped.
func ParseDimensions(s string) []models.Dimension {
	var dims []models.Dimension
	for _, pair := range strings.Split(s, ";") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			continue
		}
		dims = append(dims, models.Dimension{Key: kv[0], Value: kv[1]})
	}
	return dims
}

// DisplayText describes q for logs and listings, e.g. "[site=a] cpu&mem".
func DisplayText(q models.Query) string {
	dims := make([]string, 0, len(q.Dimensions))
	for _, d := range q.Dimensions {
		dims = append(dims, d.Key+"="+d.Value)
	}
	text := "[" + strings.Join(dims, ",") + "]"

	if len(q.Metrics) > 0 {
		names := make([]string, 0, len(q.Metrics))
		for _, m := range q.Metrics {
			if m.MetricName != "" {
				names = append(names, m.MetricName)
			} else {
				names = append(names, m.MetricID)
			}
		}
		text += " " + strings.Join(names, "&")
	}

	return text
}
