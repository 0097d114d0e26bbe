package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestLoggingMiddleware(t *testing.T) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("ok"))
		}
	}))

	tests := []struct {
		name          string
		path          string
		expectLogged  bool
		expectedParts []string
	}{
		{"/health is not logged", "/health", false, nil},
		{"/metrics is not logged", "/metrics", false, nil},
		{"status is logged", "/status?x=1", true, []string{"level=INFO", "path=/status", "status_code=200", "bytes_written=2", "request_id=test-123"}},
		{"client error logged as warn", "/missing", true, []string{"level=WARN", "status_code=404"}},
		{"server error logged as error", "/broken", true, []string{"level=ERROR", "status_code=500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logOutput.Reset()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-123"))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			logs := logOutput.String()
			if !tt.expectLogged {
				if logs != "" {
					t.Errorf("expected no logs, got: %s", logs)
				}
				return
			}

			for _, part := range tt.expectedParts {
				if !strings.Contains(logs, part) {
					t.Errorf("expected log to contain %q, got: %s", part, logs)
				}
			}
		})
	}
}

func TestLoggingMiddlewareCustomSkipPaths(t *testing.T) {
	var logOutput strings.Builder
	logger := slog.New(slog.NewTextHandler(&logOutput, nil))

	handler := LoggingMiddleware(logger, "/status")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))
	if logOutput.Len() != 0 {
		t.Errorf("expected /status to be skipped, got: %s", logOutput.String())
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(logOutput.String(), "request_id=unknown") {
		t.Errorf("expected /health to be logged with unknown request id, got: %s", logOutput.String())
	}
}

func TestResponseWriterWrapperFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	ww := &responseWriterWrapper{ResponseWriter: rr, statusCode: http.StatusOK}

	if err := http.NewResponseController(ww).Flush(); err != nil {
		t.Fatalf("flush through wrapper failed: %v", err)
	}
	if !rr.Flushed {
		t.Error("underlying recorder was not flushed")
	}
}
