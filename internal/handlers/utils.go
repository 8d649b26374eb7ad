package handlers

import (
	"dashcache/internal/config"
	"dashcache/internal/datasource"
	"dashcache/internal/models"
	"dashcache/internal/timerange"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

const maxRequestBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeQueryRequest reads body and resolves it into a request at now.
func decodeQueryRequest(body io.Reader, now time.Time, defaults config.DataConfig) (models.Request, error) {
	if body == nil {
		return models.Request{}, errEmptyBody
	}

	var in QueryRequestBody
	if err := json.NewDecoder(io.LimitReader(body, maxRequestBodyBytes)).Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Request{}, errEmptyBody
		}
		return models.Request{}, fmt.Errorf("invalid request body: %w", err)
	}

	if len(in.Targets) == 0 {
		return models.Request{}, errors.New("at least one target is required")
	}

	raw := in.Range
	if raw.From == "" && raw.To == "" {
		raw = timerange.RawTimeRange{From: "now-1h", To: timerange.Now}
	}

	r, err := timerange.Parse(raw, now)
	if err != nil {
		return models.Request{}, fmt.Errorf("invalid range: %w", err)
	}

	maxDataPoints := in.MaxDataPoints
	if maxDataPoints <= 0 {
		maxDataPoints = defaults.MaxDataPoints
	}

	return models.Request{
		RequestID:     in.RequestID,
		Targets:       in.Targets,
		Range:         r,
		Interval:      time.Duration(in.IntervalMs) * time.Millisecond,
		MaxDataPoints: maxDataPoints,
	}, nil
}

func dimensionsParam(s string) []models.Dimension {
	if s == "" {
		return nil
	}
	return datasource.ParseDimensions(s)
}
