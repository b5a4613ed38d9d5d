package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/fridgelog/internal/fridge"
	"github.com/hitoshi/fridgelog/internal/model"
)

// FridgeServiceInterface は冷蔵庫画像ハンドラーが必要とするサービスインターフェース。
type FridgeServiceInterface interface {
	Upload(ctx context.Context, userID string, body io.Reader, now time.Time) (*fridge.UploadResult, error)
	History(ctx context.Context, userID string) ([]fridge.HistoryEntry, error)
	Items(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error)
	Explore(ctx context.Context, limit int) ([]fridge.ExploreEntry, error)
	SearchUsers(ctx context.Context, query string) ([]fridge.UserSummary, error)
}

// デフォルトの取得件数
const (
	defaultItemsLimit   = 100
	defaultExploreLimit = 50
	maxListLimit        = 500
)

// FridgeHandler は冷蔵庫画像のHTTPハンドラー。
type FridgeHandler struct {
	service FridgeServiceInterface
	now     func() time.Time
}

// NewFridgeHandler はFridgeHandlerを生成する。
func NewFridgeHandler(service FridgeServiceInterface) *FridgeHandler {
	return &FridgeHandler{service: service, now: time.Now}
}

// Upload は呼び出し元ユーザーの冷蔵庫画像を保存する。ボディはJPEG画像そのもの。
// POST /api/fridge-images
func (h *FridgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Upload(r.Context(), userID, r.Body, h.now())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// History は呼び出し元ユーザーのアップロード履歴を返す。
// GET /api/fridge-images
func (h *FridgeHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	entries, err := h.service.History(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Items は呼び出し元ユーザーの食材レコードを返す。
// GET /api/fridge-items?limit=
func (h *FridgeHandler) Items(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	limit, ok := parseLimit(w, r, defaultItemsLimit)
	if !ok {
		return
	}

	items, err := h.service.Items(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ExploreImages は全ユーザーの画像を新しい順に返す。
// GET /api/explore/images?limit=
func (h *FridgeHandler) ExploreImages(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, defaultExploreLimit)
	if !ok {
		return
	}

	entries, err := h.service.Explore(r.Context(), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// SearchUsers はユーザーをあいまい検索する。
// GET /api/explore/users?q=
func (h *FridgeHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SearchUsers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// parseLimit はlimitクエリパラメータを解析する。1-500の範囲外は400。
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("limitには1から500の整数を指定してください"))
		return 0, false
	}
	return limit, true
}
