package function

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/profile"
)

// ProfileService はプロフィール操作を提供する。
type ProfileService interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Save(ctx context.Context, userID string, in model.ProfileInput) (*model.UserProfile, error)
	Delete(ctx context.Context, userID string) error
	Resolve(ctx context.Context, ev profile.ResolverEvent) (any, error)
}

type errorBody struct {
	Error string `json:"error"`
}

var (
	invalidRequestBody = errorBody{Error: "Invalid request"}
	internalErrorBody  = errorBody{Error: "Internal Server Error"}
)

// ProfileFunction はプロフィールのAPI Gatewayプロキシハンドラー。
type ProfileFunction struct {
	service       ProfileService
	allowedOrigin string
	logger        *slog.Logger
}

// NewProfileFunction はProfileFunctionを生成する。allowedOriginはCORSヘッダーに使う。
func NewProfileFunction(service ProfileService, allowedOrigin string, logger *slog.Logger) *ProfileFunction {
	return &ProfileFunction{service: service, allowedOrigin: allowedOrigin, logger: logger}
}

// Handle はHTTPメソッドとpathParameters.userIdで操作を選ぶ。
// GETは未作成ならnull、POSTはボディのuserId（なければパス）を対象に部分更新、DELETEは削除。
// それ以外は400を返す。
func (f *ProfileFunction) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return guard(f.logger, "profile",
		func() (events.APIGatewayProxyResponse, error) {
			return f.respond(http.StatusInternalServerError, internalErrorBody), nil
		},
		func() (events.APIGatewayProxyResponse, error) {
			return f.handle(ctx, req), nil
		},
	)
}

func (f *ProfileFunction) handle(ctx context.Context, req events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	pathUserID := req.PathParameters["userId"]

	switch req.HTTPMethod {
	case http.MethodGet:
		if pathUserID == "" {
			break
		}
		p, err := f.service.Get(ctx, pathUserID)
		if err != nil {
			return f.failure(err)
		}
		return f.respond(http.StatusOK, p)

	case http.MethodPost:
		if req.Body == "" {
			break
		}
		var payload profile.Payload
		if err := json.Unmarshal([]byte(req.Body), &payload); err != nil {
			return f.respond(http.StatusBadRequest, invalidRequestBody)
		}
		userID := payload.UserID
		if userID == "" {
			userID = pathUserID
		}
		if _, err := f.service.Save(ctx, userID, payload.Input()); err != nil {
			return f.failure(err)
		}
		return f.respond(http.StatusOK, profile.SavedResult(userID))

	case http.MethodDelete:
		if pathUserID == "" {
			break
		}
		if err := f.service.Delete(ctx, pathUserID); err != nil {
			return f.failure(err)
		}
		return f.respond(http.StatusOK, profile.DeletedResult(pathUserID))
	}

	return f.respond(http.StatusBadRequest, invalidRequestBody)
}

func (f *ProfileFunction) failure(err error) events.APIGatewayProxyResponse {
	status, _ := statusFor(err)
	if status < http.StatusInternalServerError {
		return f.respond(http.StatusBadRequest, invalidRequestBody)
	}
	f.logger.Error("profile request failed", slog.String("error", err.Error()))
	return f.respond(http.StatusInternalServerError, internalErrorBody)
}

func (f *ProfileFunction) respond(statusCode int, v any) events.APIGatewayProxyResponse {
	return jsonResponse(statusCode, map[string]string{"Access-Control-Allow-Origin": f.allowedOrigin}, v)
}
