package models

import (
	"dashcache/internal/dataframe"
	"dashcache/internal/timerange"
	"time"
)

// Request is the query set of one panel refresh.
type Request struct {
	RequestID     string              `json:"requestId"`
	Targets       []Query             `json:"targets"`
	Range         timerange.TimeRange `json:"range"`
	Interval      time.Duration       `json:"-"`
	MaxDataPoints int64               `json:"maxDataPoints,omitempty"`
}

// FindTarget returns the target with the given refId.
func (r Request) FindTarget(refID string) (Query, bool) {
	for _, q := range r.Targets {
		if q.RefID == refID {
			return q, true
		}
	}
	return Query{}, false
}

type LoadingState string

const (
	LoadingStateStreaming LoadingState = "Streaming"
	LoadingStateDone      LoadingState = "Done"
	LoadingStateError     LoadingState = "Error"
)

// Response is one emission of a query stream. Frames always hold everything
// merged so far for the request identified by Key.
type Response struct {
	Key    string            `json:"key"`
	State  LoadingState      `json:"state"`
	Frames []dataframe.Frame `json:"data"`
	Error  string            `json:"error,omitempty"`
}

// NextTokens maps refId to the continuation token of the frames that carry one.
func (r Response) NextTokens() map[string]string {
	tokens := make(map[string]string)
	for _, f := range r.Frames {
		if token := f.NextToken(); token != "" {
			if _, seen := tokens[f.RefID]; !seen {
				tokens[f.RefID] = token
			}
		}
	}
	return tokens
}

func (r Response) IsTerminal() bool {
	return r.State == LoadingStateDone || r.State == LoadingStateError
}
