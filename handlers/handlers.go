// Package handlers provides the JSON endpoints of the status service and the
// response helpers shared by the middleware.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/giygas/nginx-status/interfaces"
	"github.com/giygas/nginx-status/logging"
)

// HealthResponse is the body served by the health endpoint
type HealthResponse struct {
	Status string         `json:"status"`
	Uptime string         `json:"uptime"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// RespondWithJSON writes payload as JSON with the given status code
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error body
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// formatUptimeHuman formats duration into a human-readable string
func formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// HealthCheck serves the checker result along with process statistics
func HealthCheck(checker interfaces.HealthChecker, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, data, httpStatus := checker.HealthCheck()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		response := HealthResponse{
			Status: status,
			Uptime: formatUptimeHuman(time.Since(startTime)),
			Data:   data,
			System: map[string]any{
				"goroutines": runtime.NumGoroutine(),
				"memory": map[string]any{
					"alloc_mb": int(m.Alloc / 1024 / 1024),
					"sys_mb":   int(m.Sys / 1024 / 1024),
					"num_gc":   m.NumGC,
				},
			},
		}

		if httpStatus != http.StatusOK {
			logging.Warn("Health check failing", "status", status, "http_status", httpStatus)
		}

		RespondWithJSON(w, httpStatus, response)
	}
}
