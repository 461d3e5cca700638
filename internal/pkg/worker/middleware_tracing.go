package worker

import (
	"context"

	"rxcal/internal/pkg/logctx"
)

// TracingMiddleware creates a middleware that adds correlation ID to context.
// An ID already on the context wins over the task ID.
func TracingMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, task *Task) error {
			if _, ok := logctx.CorrelationID(ctx); !ok {
				ctx = logctx.WithCorrelationID(ctx, task.ID)
			}
			return next.Process(ctx, task)
		})
	}
}
