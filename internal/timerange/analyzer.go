package timerange

import "time"

// DefaultRefreshWindow is how much of the trailing range is always fetched live.
const DefaultRefreshWindow = 15 * time.Minute

// Analyzer decides which ranges are worth caching and which part of a cached
// range must be refreshed.
type Analyzer struct {
	RefreshWindow time.Duration
}

func NewAnalyzer(refreshWindow time.Duration) Analyzer {
	if refreshWindow <= 0 {
		refreshWindow = DefaultRefreshWindow
	}
	return Analyzer{RefreshWindow: refreshWindow}
}

// IsCacheable reports whether r is relative to now and starts before the
// trailing refresh window.
func (a Analyzer) IsCacheable(r *TimeRange) bool {
	if r == nil {
		return false
	}

	if !IsRelativeFromNow(r.Raw) {
		return false
	}

	return r.From.Before(r.To.Add(-a.RefreshWindow))
}

// RefreshRange is the part of request that has to be fetched live given a
// cache entry covering cached. It starts where the cache ends, but never later
// than the start of the refresh window.
func (a Analyzer) RefreshRange(request, cached TimeRange) TimeRange {
	return TimeRange{
		From: MinTime(cached.To, request.To.Add(-a.RefreshWindow)),
		To:   request.To,
		Raw:  request.Raw,
	}
}

// CoversStart reports whether candidate can serve as the prefix of target:
// both start together, or candidate starts earlier and ends after target starts.
func CoversStart(candidate, target TimeRange) bool {
	if target.From.Equal(candidate.From) {
		return true
	}

	return candidate.From.Before(target.From) && target.From.Before(candidate.To)
}
