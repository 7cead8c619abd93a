package health

import (
	"context"
	"encoding/json"
	"net/http"
)

// LivenessHandler returns an HTTP handler for liveness probes: the
// process is up and serving.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// readinessResponse is the JSON body of the readiness endpoint.
type readinessResponse struct {
	Status string                   `json:"status"`
	Checks map[string]checkResponse `json:"checks,omitempty"`
}

type checkResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ReadinessHandler returns an HTTP handler that runs all checks in agg
// and reports 503 when any is unhealthy.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		resp := readinessResponse{
			Status: status.String(),
			Checks: make(map[string]checkResponse, len(results)),
		}
		for name, result := range results {
			cr := checkResponse{
				Status:  result.Status.String(),
				Message: result.Message,
			}
			if result.Error != nil {
				cr.Error = result.Error.Error()
			}
			resp.Checks[name] = cr
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// InfoHandler returns the service info endpoint served at /mcp/info,
// kept compatible with the original deployment's health probe.
func InfoHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":        "healthy",
			"service":       service,
			"path_accessed": r.URL.Path,
		})
	}
}
