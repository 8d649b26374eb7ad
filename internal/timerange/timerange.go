package timerange

import (
	"dashcache/internal/utils"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Now       = "now"
	nowPrefix = "now-"
)

// RawTimeRange holds the expressions a range was built from, e.g. "now-1h" and "now".
type RawTimeRange struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// TimeRange is an absolute range together with its raw expression.
type TimeRange struct {
	From time.Time    `json:"from"`
	To   time.Time    `json:"to"`
	Raw  RawTimeRange `json:"raw"`
}

// AbsoluteRange is a range of instants without any raw expression.
type AbsoluteRange struct {
	From time.Time
	To   time.Time
}

func (r TimeRange) Absolute() AbsoluteRange {
	return AbsoluteRange{From: r.From, To: r.To}
}

func (r TimeRange) Duration() time.Duration {
	return r.To.Sub(r.From)
}

// IsRelativeFromNow reports whether raw has the form "now-<N><unit>" .. "now".
func IsRelativeFromNow(raw RawTimeRange) bool {
	if raw.To != Now || !strings.HasPrefix(raw.From, nowPrefix) {
		return false
	}

	_, err := utils.ParseDurationString(strings.TrimPrefix(raw.From, nowPrefix))
	return err == nil
}

// Parse resolves a raw range against now. Each side may be "now",
// "now-<duration>", an RFC3339 timestamp or epoch milliseconds.
func Parse(raw RawTimeRange, now time.Time) (TimeRange, error) {
	from, err := parseExpression(raw.From, now)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid from %q: %w", raw.From, err)
	}

	to, err := parseExpression(raw.To, now)
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid to %q: %w", raw.To, err)
	}

	if from.After(to) {
		return TimeRange{}, fmt.Errorf("from %q is after to %q", raw.From, raw.To)
	}

	return TimeRange{From: from, To: to, Raw: raw}, nil
}

func parseExpression(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "":
		return time.Time{}, fmt.Errorf("empty expression")
	case expr == Now:
		return now, nil
	case strings.HasPrefix(expr, nowPrefix):
		d, err := utils.ParseDurationString(strings.TrimPrefix(expr, nowPrefix))
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(-d), nil
	}

	if ms, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Parse(time.RFC3339, expr)
}

// MinTime returns the earliest of the given instants.
func MinTime(first time.Time, rest ...time.Time) time.Time {
	m := first
	for _, t := range rest {
		if t.Before(m) {
			m = t
		}
	}
	return m
}
