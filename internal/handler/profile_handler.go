package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/profile"
)

// ProfileServiceInterface はプロフィールハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.UserProfile, error)
	Save(ctx context.Context, userID string, in model.ProfileInput) (*model.UserProfile, error)
	Delete(ctx context.Context, userID string) error
	UploadImage(ctx context.Context, userID string, r io.Reader) (string, error)
	ImageURL(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, ev profile.ResolverEvent) (any, error)
}

// ProfileHandler はプロフィールのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// imageURLResponse はプロフィール画像URLのレスポンス。画像がない場合はnull。
type imageURLResponse struct {
	ImageURL *string `json:"imageUrl"`
}

// GetProfile はプロフィールを返す。未作成の場合はnullを返す。
// GET /api/profiles/{userId}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile はプロフィールを部分更新する。
// POST /api/profiles/{userId}
func (h *ProfileHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var payload profile.Payload
	if !decodeJSONBody(w, r, &payload) {
		return
	}

	userID := chi.URLParam(r, "userId")
	if !requireOwner(w, r, userID) {
		return
	}
	if _, err := h.service.Save(r.Context(), userID, payload.Input()); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.SavedResult(userID))
}

// DeleteProfile はプロフィールを削除する。
// DELETE /api/profiles/{userId}
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !requireOwner(w, r, userID) {
		return
	}
	if err := h.service.Delete(r.Context(), userID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.DeletedResult(userID))
}

// Resolve は名前付き操作形式のリクエストを処理する。
// POST /api/profiles/resolve
func (h *ProfileHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var ev profile.ResolverEvent
	if !decodeJSONBody(w, r, &ev) {
		return
	}
	if !requireOwner(w, r, ev.TargetUserID()) {
		return
	}

	result, err := h.service.Resolve(r.Context(), ev)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UploadImage はプロフィール画像をアップロードする。
// PUT /api/profiles/{userId}/image
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !requireOwner(w, r, userID) {
		return
	}
	url, err := h.service.UploadImage(r.Context(), userID, r.Body)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imageURLResponse{ImageURL: &url})
}

// GetImage はプロフィール画像の署名付きURLを返す。
// GET /api/profiles/{userId}/image
func (h *ProfileHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.ImageURL(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	resp := imageURLResponse{}
	if url != "" {
		resp.ImageURL = &url
	}
	writeJSON(w, http.StatusOK, resp)
}
