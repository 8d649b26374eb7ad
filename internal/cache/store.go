package cache

import (
	"context"
	"dashcache/internal/dataframe"
	"dashcache/internal/metrics"
	"dashcache/internal/models"
	"dashcache/internal/timerange"
	"log/slog"
	"sync"
	"time"
)

//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks

// CachedQuery pairs a result frame with the query that produced it.
type CachedQuery struct {
	Query models.Query
	Frame dataframe.Frame
}

// Entry is the cached result of one request. Entries are replaced whole and
// never modified in place.
type Entry struct {
	Queries  []CachedQuery
	Range    timerange.TimeRange
	StoredAt time.Time
}

type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, entry Entry)
	Delete(ctx context.Context, key string)
	ListAll(ctx context.Context) []string
	Size(ctx context.Context) int
}

// MemStore keeps entries in process memory for the lifetime of the data source.
type MemStore struct {
	entries map[string]Entry
	mutex   sync.RWMutex
	logger  *slog.Logger
}

func NewMemStore(logger *slog.Logger) *MemStore {
	return &MemStore{
		entries: make(map[string]Entry),
		logger:  logger,
	}
}

// Get returns the entry stored under key
func (m *MemStore) Get(ctx context.Context, key string) (Entry, bool) {
	start := time.Now()
	defer observe(metrics.CacheOperationTypeGet, start)

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.entries[key]
	return entry, exists
}

// Set stores (or replaces) the entry for key
func (m *MemStore) Set(ctx context.Context, key string, entry Entry) {
	start := time.Now()
	defer observe(metrics.CacheOperationTypeSet, start)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.entries[key] = entry
	metrics.CacheItems.WithLabelValues(metrics.CacheNameRelativeRange).Set(float64(len(m.entries)))
	m.logger.Debug("stored cache entry", "key", Digest(key), "queries", len(entry.Queries))
}

// Delete removes an entry
func (m *MemStore) Delete(ctx context.Context, key string) {
	start := time.Now()
	defer observe(metrics.CacheOperationTypeDelete, start)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.entries, key)
	metrics.CacheItems.WithLabelValues(metrics.CacheNameRelativeRange).Set(float64(len(m.entries)))
}

// ListAll returns the keys of all entries
func (m *MemStore) ListAll(ctx context.Context) []string {
	start := time.Now()
	defer observe(metrics.CacheOperationTypeListAll, start)

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}

	return keys
}

// Size returns the current number of entries
func (m *MemStore) Size(ctx context.Context) int {
	start := time.Now()
	defer observe(metrics.CacheOperationTypeCountEntries, start)

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.entries)
}

func observe(operation string, start time.Time) {
	metrics.CacheOperationDuration.WithLabelValues(metrics.CacheNameRelativeRange, operation).Observe(time.Since(start).Seconds())
}
