package handlers

import (
	"dashcache/internal/models"
	"dashcache/internal/timerange"
)

// QueryRequestBody is the body of POST /api/query. The range is given in raw
// form and resolved against the time the request arrives.
type QueryRequestBody struct {
	RequestID     string                 `json:"requestId"`
	Targets       []models.Query         `json:"targets"`
	Range         timerange.RawTimeRange `json:"range"`
	IntervalMs    int64                  `json:"intervalMs"`
	MaxDataPoints int64                  `json:"maxDataPoints"`
}

type CacheStats struct {
	Enabled bool     `json:"enabled"`
	Size    int      `json:"size"`
	Keys    []string `json:"keys"`
}

type ListResult struct {
	Values []string `json:"values"`
}
