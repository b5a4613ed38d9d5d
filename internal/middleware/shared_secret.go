package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/hitoshi/fridgelog/internal/model"
)

// EventSecretHeader はイベント通知の送信元が共有シークレットを渡すヘッダー。
const EventSecretHeader = "X-Event-Secret"

// NewSharedSecretMiddleware はEventSecretHeaderの値がsecretと一致するリクエストだけを通すミドルウェアを返す。
// 一致しない場合は401を返す。
func NewSharedSecretMiddleware(secret string) func(next http.Handler) http.Handler {
	want := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(EventSecretHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				slog.Warn("rejected event notification",
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
