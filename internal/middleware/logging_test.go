package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// serveLogged はハンドラーをロギングミドルウェア越しに1回実行し、ログ1行を返す。
// ログが出力されなかった場合はnilを返す。
func serveLogged(t *testing.T, req *http.Request, h http.HandlerFunc) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewLoggingMiddleware(logger)(h).ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\nraw: %s", err, buf.String())
	}
	return entry
}

func TestLoggingMiddleware_LogsRequestFields(t *testing.T) {
	entry := serveLogged(t, httptest.NewRequest(http.MethodGet, "/api/fridge-images", nil),
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

	if entry["msg"] != "http_request" || entry["method"] != "GET" || entry["path"] != "/api/fridge-images" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["status"] != float64(200) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if entry["bytes"] != float64(2) {
		t.Errorf("bytes = %v, want 2", entry["bytes"])
	}
	if d, ok := entry["duration_ms"].(float64); !ok || d < 0 {
		t.Errorf("duration_ms = %v, want >= 0", entry["duration_ms"])
	}
}

func TestLoggingMiddleware_UserID(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	// コンテキストのユーザーIDを優先する
	req := httptest.NewRequest(http.MethodGet, "/api/fridge-items", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-123"))
	req.Header.Set(UserIDHeader, "someone-else")
	if entry := serveLogged(t, req, ok); entry["user_id"] != "user-123" {
		t.Errorf("user_id = %v, want user-123", entry["user_id"])
	}

	// 識別ミドルウェアの外側ではヘッダーから補う
	req = httptest.NewRequest(http.MethodGet, "/api/fridge-items", nil)
	req.Header.Set(UserIDHeader, "alice")
	if entry := serveLogged(t, req, ok); entry["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", entry["user_id"])
	}

	// 不正な形式のヘッダーは記録しない
	req = httptest.NewRequest(http.MethodGet, "/api/fridge-items", nil)
	req.Header.Set(UserIDHeader, "../etc")
	if entry := serveLogged(t, req, ok); entry["user_id"] != nil {
		t.Errorf("user_id should be omitted, got %v", entry["user_id"])
	}

	req = httptest.NewRequest(http.MethodGet, "/api/explore/images", nil)
	if entry := serveLogged(t, req, ok); entry["user_id"] != nil {
		t.Errorf("user_id should be omitted for anonymous request, got %v", entry["user_id"])
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  string
	}{
		{"200 OK", http.StatusOK, "INFO"},
		{"201 Created", http.StatusCreated, "INFO"},
		{"400 Bad Request", http.StatusBadRequest, "WARN"},
		{"413 Too Large", http.StatusRequestEntityTooLarge, "WARN"},
		{"500 Internal Server Error", http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := serveLogged(t, httptest.NewRequest(http.MethodPost, "/api/fridge-images", nil),
				func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.statusCode)
				})

			if status := int(entry["status"].(float64)); status != tt.statusCode {
				t.Errorf("status = %d, want %d", status, tt.statusCode)
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
		})
	}
}

func TestLoggingMiddleware_QuietOperationalPaths(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	for _, path := range []string{"/health", "/metrics"} {
		if entry := serveLogged(t, httptest.NewRequest(http.MethodGet, path, nil), ok); entry != nil {
			t.Errorf("%s should be logged at debug level, got %v", path, entry)
		}
	}

	// 失敗した場合は運用エンドポイントでも記録する
	entry := serveLogged(t, httptest.NewRequest(http.MethodGet, "/health", nil),
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	if entry == nil || entry["level"] != "ERROR" {
		t.Errorf("failed health check should be logged at error level, got %v", entry)
	}
}
