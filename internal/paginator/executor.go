package paginator

import (
	"context"
	"dashcache/internal/models"
)

//go:generate mockgen -source=executor.go -destination=../mocks/executor.go -package=mocks

// Executor runs a single page of a request against the backend. A page may
// carry continuation tokens in its frame metadata; the paginator follows them.
type Executor interface {
	ExecutePage(ctx context.Context, request models.Request) (models.Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, request models.Request) (models.Response, error)

func (f ExecutorFunc) ExecutePage(ctx context.Context, request models.Request) (models.Response, error) {
	return f(ctx, request)
}
