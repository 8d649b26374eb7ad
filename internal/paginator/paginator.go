package paginator

import (
	"context"
	"dashcache/internal/dataframe"
	"dashcache/internal/metrics"
	"dashcache/internal/models"
	"fmt"
	"log/slog"
)

// Paginator drives one logical request through as many backend pages as the
// continuation tokens demand. A Paginator serves a single stream.
type Paginator struct {
	Request  models.Request
	Executor Executor

	// Start is shown before any backend call; End is merged after the last page.
	Start *models.Response
	End   *models.Response

	// MaxPages bounds the number of backend calls, 0 means unlimited.
	MaxPages int

	// OnComplete receives the final response of a stream once its Done
	// emission has been delivered. It never runs for failed or cancelled
	// streams, and it runs before the channel is closed.
	OnComplete func(ctx context.Context, response models.Response)

	Logger *slog.Logger
}

// Stream starts paginating and returns the emissions: zero or more Streaming
// responses followed by exactly one Done or Error response. Every emission
// holds all frames merged so far. The channel is closed after the terminal
// response, or early once ctx is cancelled, in which case no further backend
// calls are made.
func (p *Paginator) Stream(ctx context.Context) <-chan models.Response {
	out := make(chan models.Response)
	go p.run(ctx, out)
	return out
}

func (p *Paginator) run(ctx context.Context, out chan<- models.Response) {
	defer close(out)

	logger := p.logger().With("request_id", p.Request.RequestID)
	key := p.Request.RequestID

	var frames []dataframe.Frame
	if p.Start != nil {
		frames = dataframe.AppendMatchingFrames(nil, p.Start.Frames)
		if !send(ctx, out, models.Response{Key: key, State: models.LoadingStateStreaming, Frames: frames}) {
			logger.Debug("stream cancelled before first page")
			return
		}
	}

	request := p.Request
	pages := 0
	for {
		if ctx.Err() != nil {
			logger.Debug("stream cancelled", "pages", pages)
			return
		}

		if p.MaxPages > 0 && pages >= p.MaxPages {
			logger.Warn("pagination limit reached", "max_pages", p.MaxPages)
			p.fail(ctx, out, frames, fmt.Sprintf("pagination stopped after %d pages", p.MaxPages))
			return
		}

		pages++
		metrics.PagesFetched.Inc()
		logger.Debug("requesting page", "page", pages, "page_request_id", request.RequestID, "targets", len(request.Targets))

		page, err := p.Executor.ExecutePage(ctx, request)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("stream cancelled", "pages", pages)
				return
			}
			page = models.Response{State: models.LoadingStateError, Frames: page.Frames, Error: err.Error()}
		}

		frames = dataframe.AppendMatchingFrames(frames, page.Frames)

		if page.State == models.LoadingStateError {
			logger.Warn("page failed", "page", pages, "error", page.Error)
			p.fail(ctx, out, frames, page.Error)
			return
		}

		next := NextQueries(request, page)
		if len(next) == 0 {
			break
		}

		if !send(ctx, out, models.Response{Key: key, State: models.LoadingStateStreaming, Frames: frames}) {
			logger.Debug("stream cancelled", "pages", pages)
			return
		}

		request = p.Request
		request.RequestID = fmt.Sprintf("%s.%d", key, pages+1)
		request.Targets = next
	}

	if p.End != nil {
		frames = dataframe.AppendMatchingFrames(frames, p.End.Frames)
	}

	done := models.Response{Key: key, State: models.LoadingStateDone, Frames: frames}
	if ctx.Err() != nil {
		return
	}

	if !send(ctx, out, done) {
		logger.Debug("stream cancelled before done", "pages", pages)
		return
	}

	metrics.StreamsCompleted.WithLabelValues(string(models.LoadingStateDone)).Inc()
	logger.Debug("stream done", "pages", pages, "frames", len(frames))

	if p.OnComplete != nil {
		p.OnComplete(ctx, done)
	}
}

func (p *Paginator) fail(ctx context.Context, out chan<- models.Response, frames []dataframe.Frame, message string) {
	rsp := models.Response{Key: p.Request.RequestID, State: models.LoadingStateError, Frames: frames, Error: message}
	if send(ctx, out, rsp) {
		metrics.StreamsCompleted.WithLabelValues(string(models.LoadingStateError)).Inc()
	}
}

func (p *Paginator) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

func send(ctx context.Context, out chan<- models.Response, rsp models.Response) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case out <- rsp:
		return true
	case <-ctx.Done():
		return false
	}
}
