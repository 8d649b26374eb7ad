package cache

import (
	"dashcache/internal/models"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// RequestKey derives the cache key of a request from the raw start of its
// range and its queries. The order of the queries does not matter.
func RequestKey(request models.Request) (string, error) {
	queriesKey, err := QueriesKey(request.Targets)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal([]any{request.Range.Raw.From, queriesKey})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request cache key: %w", err)
	}

	return string(data), nil
}

// QueriesKey serializes every query's identity, sorts the results and
// combines them.
func QueriesKey(queries []models.Query) (string, error) {
	ids := make([]string, 0, len(queries))
	for _, q := range queries {
		id, err := queryKey(q)
		if err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to marshal queries cache key: %w", err)
	}

	return string(data), nil
}

// queryKey serializes the identity of q. Absent and empty optional values
// both encode as null.
func queryKey(q models.Query) (string, error) {
	var datasource any
	if q.Datasource != nil && *q.Datasource != (models.DatasourceRef{}) {
		datasource = q.Datasource
	}

	identity := []any{
		datasource,
		nullIfEmpty(string(q.QueryType)),
		nullIfEmptySlice(q.Metrics),
		nullIfEmptySlice(q.Dimensions),
		nullIfEmptyMap(q.QueryOptions),
		nullIfEmpty(q.DisplayName),
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return "", fmt.Errorf("failed to marshal query %q cache key: %w", q.RefID, err)
	}

	return string(data), nil
}

// Digest is a short, stable label for a key, for logs and listings.
func Digest(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfEmptySlice[T any](s []T) any {
	if len(s) == 0 {
		return nil
	}
	return s
}

func nullIfEmptyMap(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	return m
}
