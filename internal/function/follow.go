package function

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/social"
)

// FollowDispatcher はフォロー操作を実行する。
type FollowDispatcher interface {
	Dispatch(ctx context.Context, req social.Request) (*social.Response, error)
}

type messageBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// FollowFunction はフォロー操作のAPI Gatewayプロキシハンドラー。
type FollowFunction struct {
	service FollowDispatcher
	logger  *slog.Logger
}

// NewFollowFunction はFollowFunctionを生成する。
func NewFollowFunction(service FollowDispatcher, logger *slog.Logger) *FollowFunction {
	return &FollowFunction{service: service, logger: logger}
}

// Handle はボディの{follower_id, following_id, action}に従って操作する。
// 入力不正は400、ストア障害は詳細を含まない500を返す。
func (f *FollowFunction) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return guard(f.logger, "follow",
		func() (events.APIGatewayProxyResponse, error) {
			return jsonResponse(http.StatusInternalServerError, nil, messageBody{Message: "Error processing request"}), nil
		},
		func() (events.APIGatewayProxyResponse, error) {
			var body social.Request
			if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
				return jsonResponse(http.StatusBadRequest, nil, messageBody{Message: "Invalid request body"}), nil
			}

			resp, err := f.service.Dispatch(ctx, body)
			if err != nil {
				status, apiErr := statusFor(err)
				if apiErr != nil && status < http.StatusInternalServerError {
					return jsonResponse(status, nil, messageBody{Message: apiErr.Message, Code: apiErr.Code}), nil
				}
				f.logger.Error("error processing follow request",
					slog.String("action", body.Action),
					slog.String("error", err.Error()),
				)
				return jsonResponse(http.StatusInternalServerError, nil, messageBody{Message: "Error processing request"}), nil
			}
			return jsonResponse(http.StatusOK, nil, resp), nil
		},
	)
}
