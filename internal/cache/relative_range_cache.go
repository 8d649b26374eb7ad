package cache

import (
	"context"
	"dashcache/internal/dataframe"
	"dashcache/internal/metrics"
	"dashcache/internal/models"
	"dashcache/internal/timerange"
	"fmt"
	"log/slog"
	"time"
)

// CachedResult is what a cache hit contributes to a request: frames to show
// before the live data, frames to append after it, and the narrowed request
// that fetches the rest.
type CachedResult struct {
	Start          models.Response
	End            models.Response
	RefreshRequest models.Request
}

// RelativeRangeCache caches responses of requests over ranges relative to now
// ("now-1h" .. "now"), so a refresh only fetches the trailing part of the range.
type RelativeRangeCache struct {
	store    Store
	analyzer timerange.Analyzer
	logger   *slog.Logger
}

func NewRelativeRangeCache(store Store, analyzer timerange.Analyzer, logger *slog.Logger) *RelativeRangeCache {
	return &RelativeRangeCache{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Get looks up the cached response for request. It reports false when the
// request is not cacheable, nothing usable is cached, or the cached entry
// cannot be trimmed.
func (c *RelativeRangeCache) Get(ctx context.Context, request models.Request) (*CachedResult, bool) {
	if reason, ok := c.cacheable(request); !ok {
		c.miss(reason)
		return nil, false
	}

	key, err := RequestKey(request)
	if err != nil {
		c.logger.Warn("failed to derive cache key", "request_id", request.RequestID, "error", err)
		c.miss(metrics.CacheMissReasonKeyFailure)
		return nil, false
	}

	entry, ok := c.store.Get(ctx, key)
	if !ok {
		c.miss(metrics.CacheMissReasonNoEntry)
		return nil, false
	}

	if !timerange.CoversStart(entry.Range, request.Range) {
		c.miss(metrics.CacheMissReasonStale)
		return nil, false
	}

	refreshRange := c.analyzer.RefreshRange(request.Range, entry.Range)
	cachedRange := timerange.AbsoluteRange{From: request.Range.From, To: refreshRange.From}

	start, err := trimCachedQueriesAtStart(entry.Queries, cachedRange)
	if err == nil {
		var end []dataframe.Frame
		end, err = trimCachedQueriesAtEnd(entry.Queries, cachedRange)
		if err == nil {
			metrics.CacheHits.WithLabelValues(metrics.CacheNameRelativeRange).Inc()
			c.logger.Debug("serving request from cache",
				"request_id", request.RequestID,
				"key", Digest(key),
				"refresh_from", refreshRange.From,
				"refresh_to", refreshRange.To)

			refresh := request
			refresh.Range = refreshRange

			return &CachedResult{
				Start:          models.Response{Key: request.RequestID, State: models.LoadingStateStreaming, Frames: start},
				End:            models.Response{Key: request.RequestID, State: models.LoadingStateStreaming, Frames: end},
				RefreshRequest: refresh,
			}, true
		}
	}

	c.logger.Warn("discarding malformed cache entry", "key", Digest(key), "error", err)
	c.store.Delete(ctx, key)
	c.miss(metrics.CacheMissReasonMalformed)
	return nil, false
}

// Set stores a successful response for request, replacing any previous entry
// with the same key. Responses that are not cacheable are ignored.
func (c *RelativeRangeCache) Set(ctx context.Context, request models.Request, response models.Response) {
	if response.State == models.LoadingStateError {
		return
	}

	if _, ok := c.cacheable(request); !ok {
		return
	}

	key, err := RequestKey(request)
	if err != nil {
		c.logger.Warn("failed to derive cache key", "request_id", request.RequestID, "error", err)
		return
	}

	queries := make([]CachedQuery, 0, len(response.Frames))
	for _, frame := range response.Frames {
		query, ok := request.FindTarget(frame.RefID)
		if !ok {
			continue
		}
		queries = append(queries, CachedQuery{Query: query, Frame: frame})
	}

	c.store.Set(ctx, key, Entry{
		Queries:  queries,
		Range:    request.Range,
		StoredAt: time.Now(),
	})
}

// Size returns the number of cached requests.
func (c *RelativeRangeCache) Size(ctx context.Context) int {
	return c.store.Size(ctx)
}

// Keys returns the digests of the cached requests.
func (c *RelativeRangeCache) Keys(ctx context.Context) []string {
	keys := c.store.ListAll(ctx)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, Digest(k))
	}
	return out
}

func (c *RelativeRangeCache) cacheable(request models.Request) (string, bool) {
	if len(request.Targets) == 0 {
		return metrics.CacheMissReasonDisabled, false
	}

	for _, q := range request.Targets {
		if !q.ClientCacheEnabled() || !q.HasIdentity() {
			return metrics.CacheMissReasonDisabled, false
		}
	}

	if !c.analyzer.IsCacheable(&request.Range) {
		return metrics.CacheMissReasonRange, false
	}

	return "", true
}

func (c *RelativeRangeCache) miss(reason string) {
	metrics.CacheMisses.WithLabelValues(metrics.CacheNameRelativeRange, reason).Inc()
}

// trimCachedQueriesAtStart returns the cached frames shown before live data.
// Descending queries are left for trimCachedQueriesAtEnd, and only series
// over the request range are reused.
func trimCachedQueriesAtStart(queries []CachedQuery, r timerange.AbsoluteRange) ([]dataframe.Frame, error) {
	frames := make([]dataframe.Frame, 0, len(queries))
	for _, cq := range queries {
		if cq.Query.IsDescending() || !models.IsRangeSeriesQueryType(cq.Query.QueryType) {
			continue
		}

		frame, err := dataframe.TrimTimeSeries(cq.Frame, r, cq.Query.LastObservation)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", cq.Query.RefID, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// trimCachedQueriesAtEnd returns the cached frames of descending queries. They
// hold the oldest rows and so belong after the live data.
func trimCachedQueriesAtEnd(queries []CachedQuery, r timerange.AbsoluteRange) ([]dataframe.Frame, error) {
	frames := make([]dataframe.Frame, 0)
	for _, cq := range queries {
		if !cq.Query.IsDescending() {
			continue
		}

		frame, err := dataframe.TrimTimeSeriesReversed(cq.Frame, r, cq.Query.LastObservation)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", cq.Query.RefID, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
