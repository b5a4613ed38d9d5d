package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/fridgelog/internal/social"
)

// FollowServiceInterface はフォローハンドラーが必要とするサービスインターフェース。
type FollowServiceInterface interface {
	Dispatch(ctx context.Context, req social.Request) (*social.Response, error)
}

// FollowHandler はフォロー関係のHTTPハンドラー。
type FollowHandler struct {
	service FollowServiceInterface
}

// NewFollowHandler はFollowHandlerを生成する。
func NewFollowHandler(service FollowServiceInterface) *FollowHandler {
	return &FollowHandler{service: service}
}

// Handle はactionに応じてフォロー操作を実行する。follower_idは呼び出し元と一致する必要がある。
// POST /api/follow
func (h *FollowHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req social.Request
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if !requireOwner(w, r, req.FollowerID) {
		return
	}

	resp, err := h.service.Dispatch(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
