package jobs

import (
	"context"
	"dashcache/internal/config"
	"dashcache/internal/datasource"
	"dashcache/internal/metrics"
	"dashcache/internal/models"
	"dashcache/internal/timerange"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultRefreshConcurrency = 4

// PanelRefreshJob re-runs the configured panels on an interval. Each refresh
// goes through the data source, so relative panels only fetch their tail once
// the cache is warm.
type PanelRefreshJob struct {
	dataSource    *datasource.DataSource
	panels        []config.PanelConfig
	store         *PanelStore
	interval      time.Duration
	concurrency   int
	maxDataPoints int64
	logger        *slog.Logger
	now           func() time.Time
}

func NewPanelRefreshJob(ds *datasource.DataSource, cfg config.DataConfig, store *PanelStore, logger *slog.Logger) *PanelRefreshJob {
	panels := make([]config.PanelConfig, 0, len(cfg.Panels))
	for _, p := range cfg.Panels {
		if !p.Disabled {
			panels = append(panels, p)
		}
	}

	return &PanelRefreshJob{
		dataSource:    ds,
		panels:        panels,
		store:         store,
		interval:      cfg.RefreshInterval,
		concurrency:   defaultRefreshConcurrency,
		maxDataPoints: cfg.MaxDataPoints,
		logger:        logger,
		now:           time.Now,
	}
}

func (j *PanelRefreshJob) Name() string {
	return "panel_refresh"
}

func (j *PanelRefreshJob) Interval() time.Duration {
	return j.interval
}

func (j *PanelRefreshJob) Run(ctx context.Context) error {
	if j.interval <= 0 {
		return fmt.Errorf("non-positive refresh interval: %s", j.interval)
	}

	if len(j.panels) == 0 {
		j.logger.Info("no panels configured, panel refresh idle")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	if err := j.RefreshAll(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Debug("panel refresh canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := j.RefreshAll(ctx); err != nil {
				return err
			}
		}
	}
}

// RefreshAll refreshes every panel with at most j.concurrency in flight. A
// failing panel is recorded in the store and does not stop the others.
func (j *PanelRefreshJob) RefreshAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.concurrency)

	for _, panel := range j.panels {
		panel := panel
		g.Go(func() error {
			j.refresh(gctx, panel)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (j *PanelRefreshJob) refresh(ctx context.Context, panel config.PanelConfig) {
	start := j.now()
	result := PanelResult{Name: panel.Name, UpdatedAt: start}

	request, err := j.panelRequest(panel, start)
	if err != nil {
		result.Response = models.Response{State: models.LoadingStateError, Error: err.Error()}
		result.Error = err.Error()
		j.record(result)
		return
	}

	rsp, err := datasource.Collect(j.dataSource.Query(ctx, request))
	if ctx.Err() != nil {
		return
	}

	result.Response = rsp
	result.Duration = j.now().Sub(start)
	if err != nil {
		result.Error = err.Error()
	}
	j.record(result)
}

func (j *PanelRefreshJob) record(result PanelResult) {
	state := result.Response.State
	if state == "" {
		state = models.LoadingStateError
	}
	metrics.PanelRefreshes.WithLabelValues(result.Name, string(state)).Inc()

	if result.Error != "" {
		j.logger.Warn("panel refresh failed", "panel", result.Name, "error", result.Error)
	} else {
		j.logger.Debug("panel refreshed", "panel", result.Name, "frames", len(result.Response.Frames), "duration", result.Duration)
	}

	j.store.Set(result)
}

func (j *PanelRefreshJob) panelRequest(panel config.PanelConfig, now time.Time) (models.Request, error) {
	r, err := timerange.Parse(panel.Range, now)
	if err != nil {
		return models.Request{}, fmt.Errorf("panel %s: %w", panel.Name, err)
	}

	maxDataPoints := panel.MaxDataPoints
	if maxDataPoints <= 0 {
		maxDataPoints = j.maxDataPoints
	}

	return models.Request{
		Targets:       panel.Queries,
		Range:         r,
		Interval:      panel.Interval,
		MaxDataPoints: maxDataPoints,
	}, nil
}
