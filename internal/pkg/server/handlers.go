package server

import (
	"net/http"

	"rxcal/internal/pkg/enlightenment"
	"rxcal/internal/pkg/scheduler"
	"rxcal/internal/pkg/worker"

	"github.com/labstack/echo/v4"
)

// Response is the envelope of JSON API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Message string      `json:"message"`
}

// SuccessResponse writes a successful envelope
func SuccessResponse(c echo.Context, statusCode int, data interface{}, message string) error {
	return c.JSON(statusCode, Response{Success: true, Data: data, Message: message})
}

// ErrorResponse writes a failed envelope
func ErrorResponse(c echo.Context, statusCode int, err interface{}, message string) error {
	return c.JSON(statusCode, Response{Success: false, Error: err, Message: message})
}

// poolStats describes the worker pool behind the specialized work queue
type poolStats struct {
	Goroutines  int                           `json:"goroutines"`
	Idle        int                           `json:"idle"`
	QueueLength int                           `json:"queue_length"`
	Tasks       map[string]worker.TaskMetrics `json:"tasks,omitempty"`
}

// capabilitiesHandler reports the probed environment, the chosen providers
// and the scheduler counters
func capabilitiesHandler(registry *enlightenment.Registry, sched *scheduler.DefaultScheduler) echo.HandlerFunc {
	return func(c echo.Context) error {
		capabilities := make(map[string]bool)
		for _, capability := range scheduler.Capabilities() {
			_, ok := sched.Capability(capability)
			capabilities[capability.String()] = ok
		}

		providers := registry.Registrations()
		if len(providers) == 0 {
			return ErrorResponse(c, http.StatusServiceUnavailable, "no providers", "Capability discovery found nothing")
		}

		data := map[string]interface{}{
			"environment":  registry.Environment(),
			"providers":    providers,
			"capabilities": capabilities,
			"scheduler":    sched.Stats(),
		}
		if queue, ok := registry.WorkQueue(); ok {
			if pool, ok := queue.(*worker.Worker); ok {
				data["work_queue"] = poolStats{
					Goroutines:  pool.GetWorkerCount(),
					Idle:        pool.GetIdleCount(),
					QueueLength: pool.GetQueueLength(),
					Tasks:       pool.TaskMetrics(),
				}
			}
		}
		return SuccessResponse(c, http.StatusOK, data, "Capabilities discovered")
	}
}
