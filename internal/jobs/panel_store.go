package jobs

import (
	"dashcache/internal/models"
	"sort"
	"sync"
	"time"
)

// PanelResult is the outcome of the latest refresh of a panel.
type PanelResult struct {
	Name      string          `json:"name"`
	Response  models.Response `json:"response"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Duration  time.Duration   `json:"-"`
	Error     string          `json:"error,omitempty"`
}

// PanelSummary is a PanelResult without its frames.
type PanelSummary struct {
	Name      string              `json:"name"`
	State     models.LoadingState `json:"state"`
	Frames    int                 `json:"frames"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Error     string              `json:"error,omitempty"`
}

// PanelStore holds the latest result of every refreshed panel.
type PanelStore struct {
	mu      sync.RWMutex
	results map[string]PanelResult
}

func NewPanelStore() *PanelStore {
	return &PanelStore{results: make(map[string]PanelResult)}
}

func (s *PanelStore) Set(result PanelResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Name] = result
}

func (s *PanelStore) Get(name string) (PanelResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[name]
	return result, ok
}

// Summaries lists all results ordered by panel name.
func (s *PanelStore) Summaries() []PanelSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PanelSummary, 0, len(s.results))
	for _, r := range s.results {
		out = append(out, PanelSummary{
			Name:      r.Name,
			State:     r.Response.State,
			Frames:    len(r.Response.Frames),
			UpdatedAt: r.UpdatedAt,
			Error:     r.Error,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
