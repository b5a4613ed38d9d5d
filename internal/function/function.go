// Package function はサーバーレス実行環境向けのハンドラーを提供する。
// 各ハンドラーはpanicを含むすべての失敗をレスポンスに変換する。
package function

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/model"
)

// guard はfnを実行し、panicした場合はログを記録してfallbackを返す。
func guard[T any](logger *slog.Logger, name string, fallback func() (T, error), fn func() (T, error)) (resp T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic recovered",
				slog.String("function", name),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())),
			)
			resp, err = fallback()
		}
	}()
	return fn()
}

// jsonResponse はJSONボディのプロキシレスポンスを作る。
func jsonResponse(statusCode int, headers map[string]string, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body = []byte(`{"message":"Internal Server Error"}`)
	}
	h := map[string]string{"Content-Type": "application/json"}
	for k, val := range headers {
		h[k] = val
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    h,
		Body:       string(body),
	}
}

// statusFor はエラーのカテゴリからステータスコードを決める。APIError以外は500。
func statusFor(err error) (int, *model.APIError) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, nil
	}
	switch apiErr.Category {
	case "validation":
		return http.StatusBadRequest, apiErr
	case "auth":
		return http.StatusUnauthorized, apiErr
	default:
		return http.StatusInternalServerError, apiErr
	}
}
