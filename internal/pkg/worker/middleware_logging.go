package worker

import (
	"context"
	"time"

	"rxcal/internal/pkg/logctx"
	"rxcal/internal/pkg/logger"

	"go.uber.org/zap"
)

// LoggingMiddleware creates a middleware that logs task processing.
// Per-task lines are written at debug level; failures at error level.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, task *Task) error {
			taskLog := log.With(
				zap.String("task_id", task.ID),
				zap.String("task_name", task.Name),
				zap.Duration("queued", task.Wait()),
			)
			if cid, ok := logctx.CorrelationID(ctx); ok && cid != task.ID {
				taskLog = taskLog.With(logctx.Fields(ctx)...)
			}

			taskLog.Debug("Task processing started")
			start := time.Now()

			err := next.Process(ctx, task)

			duration := time.Since(start)
			taskLog = taskLog.With(zap.Duration("duration", duration))

			if err != nil {
				taskLog.Error("Task processing failed", zap.Error(err))
			} else {
				taskLog.Debug("Task processing completed")
			}

			return err
		})
	}
}
