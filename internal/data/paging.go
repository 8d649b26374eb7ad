package data

import (
	"dashcache/internal/timerange"
	"fmt"
	"strconv"
	"time"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
)

const minStep = time.Second

// pageRange selects the window of r fetched by one page. Evaluations fall in
// (r.From, r.To], so a range starting where a cached prefix ends never repeats
// its last row. Ascending pages walk forward from r.From+step, descending
// pages walk backward from r.To. The returned token is the first evaluation
// time of the next page in epoch milliseconds, or empty on the last page.
func pageRange(r timerange.AbsoluteRange, token string, window, step time.Duration, descending bool) (v1.Range, string, error) {
	window = max(window, step)

	if descending {
		end := r.To
		if token != "" {
			t, err := parseToken(token)
			if err != nil {
				return v1.Range{}, "", err
			}
			end = t
		}

		start := end.Add(-window)
		next := start.Add(-step)
		if !start.After(r.From) || !next.After(r.From) {
			return v1.Range{Start: firstAfter(r.From, end, step), End: end, Step: step}, "", nil
		}
		return v1.Range{Start: start, End: end, Step: step}, formatToken(next), nil
	}

	start := r.From.Add(step)
	if start.After(r.To) {
		start = r.To
	}
	if token != "" {
		t, err := parseToken(token)
		if err != nil {
			return v1.Range{}, "", err
		}
		start = t
	}

	end := start.Add(window)
	next := end.Add(step)
	if !end.Before(r.To) || next.After(r.To) {
		return v1.Range{Start: start, End: r.To, Step: step}, "", nil
	}
	return v1.Range{Start: start, End: end, Step: step}, formatToken(next), nil
}

// firstAfter is the earliest time after from on the step grid ending at end.
func firstAfter(from, end time.Time, step time.Duration) time.Time {
	n := max(end.Sub(from)-1, 0) / step
	return end.Add(-n * step)
}

// stepFor spreads maxDataPoints over r, never finer than interval or a second.
func stepFor(r timerange.AbsoluteRange, interval time.Duration, maxDataPoints int64) time.Duration {
	step := max(interval, minStep)
	if maxDataPoints > 0 {
		step = max(step, r.To.Sub(r.From)/time.Duration(maxDataPoints))
	}
	return step.Truncate(time.Millisecond)
}

func parseToken(token string) (time.Time, error) {
	ms, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid next token %q: %w", token, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func formatToken(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
