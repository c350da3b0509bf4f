package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		path       string
		header     string
		wantStatus int
		wantCalled bool
	}{
		{name: "valid key", key: "s3cret", path: "/api/tasks", header: "s3cret", wantStatus: http.StatusOK, wantCalled: true},
		{name: "missing key", key: "s3cret", path: "/api/tasks", wantStatus: http.StatusUnauthorized},
		{name: "wrong key", key: "s3cret", path: "/api/users/1", header: "s3cret2", wantStatus: http.StatusUnauthorized},
		{name: "case differs", key: "s3cret", path: "/api/users", header: "S3CRET", wantStatus: http.StatusUnauthorized},
		{name: "api root", key: "s3cret", path: "/api", wantStatus: http.StatusUnauthorized},
		{name: "outside prefix", key: "s3cret", path: "/health", wantStatus: http.StatusOK, wantCalled: true},
		{name: "lookalike prefix", key: "s3cret", path: "/apidocs", wantStatus: http.StatusOK, wantCalled: true},
		{name: "empty configured key", key: "", path: "/api/tasks", header: "", wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})
			h := RequireAPIKey("/api/", tt.key)(next)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(APIKeyHeader, tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Fatalf("downstream called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var body ErrorResponse
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if body.Status != 401 || body.Path != tt.path || body.Message == "" || body.Timestamp.IsZero() {
					t.Fatalf("unexpected error body %+v", body)
				}
			}
		})
	}
}
