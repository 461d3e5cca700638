package health

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// statusCode maps DOWN to 503; DEGRADED still serves 200
func statusCode(status HealthStatus) int {
	if status == StatusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// HTTPHandler returns the aggregated health response
func HTTPHandler(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := service.GetHealthResponse(r.Context())
		writeJSON(w, statusCode(response.Status), response)
	}
}

// ReadinessHandler is ready only when every check is UP
func ReadinessHandler(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := service.GetHealthResponse(r.Context())
		if response.Status != StatusUp {
			http.Error(w, "NOT READY", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// LivenessHandler answers as long as the process can serve requests
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// DetailedHealthHandler adds runtime details to the health response
func DetailedHealthHandler(service *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := service.GetHealthResponse(r.Context())
		if response.Details == nil {
			response.Details = make(map[string]interface{})
		}
		response.Details["goroutines"] = runtime.NumGoroutine()
		response.Details["gomaxprocs"] = runtime.GOMAXPROCS(0)
		response.Details["uptime_seconds"] = int64(service.Uptime().Seconds())

		writeJSON(w, statusCode(response.Status), response)
	}
}
