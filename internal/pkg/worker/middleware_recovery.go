package worker

import (
	"context"
	"runtime/debug"

	"rxcal/internal/pkg/errorsx"
	"rxcal/internal/pkg/logger"

	"go.uber.org/zap"
)

// RecoveryMiddleware creates a middleware that turns a panic into an
// *errorsx.FaultError
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, task *Task) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := debug.Stack()

					log.Error("Task panicked",
						zap.String("task_id", task.ID),
						zap.String("task_name", task.Name),
						zap.Any("panic", r),
						zap.String("stack", string(stack)),
					)

					err = &errorsx.FaultError{Value: r, Stack: stack}
				}
			}()

			return next.Process(ctx, task)
		})
	}
}
