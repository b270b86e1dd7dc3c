package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"multichat/internal/contextutil"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{
			name:       "request with origin",
			method:     http.MethodGet,
			origin:     "http://example.com",
			wantOrigin: "http://example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "request without origin",
			method:     http.MethodGet,
			origin:     "",
			wantOrigin: "*",
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight request",
			method:     http.MethodOptions,
			origin:     "http://example.com",
			wantOrigin: "http://example.com",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var captured *slog.Logger
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = contextutil.LoggerFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversations/1", nil))

	if captured == nil {
		t.Fatal("handler did not run")
	}
	if captured == slog.Default() {
		t.Error("context logger should be a request-scoped child, not the default logger")
	}
}
