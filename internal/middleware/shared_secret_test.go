package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSharedSecretMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		wantCode int
	}{
		{"matching secret", "s3cret", "s3cret", http.StatusOK},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong secret", "s3cret", "guess", http.StatusUnauthorized},
		{"prefix only", "s3cret", "s3c", http.StatusUnauthorized},
		{"empty secret rejects all", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewSharedSecretMiddleware(tt.secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/events/s3", nil)
			if tt.header != "" {
				req.Header.Set(EventSecretHeader, tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if called != (tt.wantCode == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}
