package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hitoshi/fridgelog/internal/model"
)

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestWriteErrorResponse_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()

	WriteErrorResponse(w, http.StatusBadRequest, model.NewSelfFollowError())

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	want := ErrorResponseBody{
		Code:     model.ErrCodeSelfFollow,
		Message:  "自分自身をフォローすることはできません。",
		Category: "validation",
		Action:   "フォローするユーザーを確認してください。",
	}
	if diff := cmp.Diff(want, decodeErrorBody(t, w)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusForAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  *model.APIError
		want int
	}{
		{"invalid request", model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{"invalid action", model.NewInvalidActionError("jump"), http.StatusBadRequest},
		{"invalid object key", model.NewInvalidObjectKeyError("a/b"), http.StatusBadRequest},
		{"self follow", model.NewSelfFollowError(), http.StatusBadRequest},
		{"profile image", model.NewProfileImageInvalidError(), http.StatusBadRequest},
		{"too large", model.NewImageTooLargeError(10), http.StatusRequestEntityTooLarge},
		{"unauthorized", model.NewUnauthorizedError(), http.StatusUnauthorized},
		{"forbidden", model.NewForbiddenError(), http.StatusForbidden},
		{"rate limit", model.NewRateLimitError(), http.StatusTooManyRequests},
		{"internal", model.NewInternalError(), http.StatusInternalServerError},
		{"unknown category", &model.APIError{Code: "X", Category: "storage"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusForAPIError(tt.err); got != tt.want {
				t.Errorf("StatusForAPIError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWriteInternalServerError_HidesDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	body := decodeErrorBody(t, w)
	if body.Code != model.ErrCodeInternal || body.Category != "system" {
		t.Errorf("body = %+v, want INTERNAL_ERROR/system", body)
	}
	if body.Action == "" {
		t.Error("action should not be empty")
	}
}

func TestWriteTooManyRequests(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter int
		want       string
	}{
		{"seconds are kept", 30, "30"},
		{"zero rounds up", 0, "1"},
		{"negative rounds up", -5, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteTooManyRequests(w, tt.retryAfter)

			if w.Code != http.StatusTooManyRequests {
				t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
			}
			if got := w.Header().Get("Retry-After"); got != tt.want {
				t.Errorf("Retry-After = %q, want %q", got, tt.want)
			}
			if body := decodeErrorBody(t, w); body.Code != model.ErrCodeRateLimitExceeded {
				t.Errorf("code = %q, want %q", body.Code, model.ErrCodeRateLimitExceeded)
			}
		})
	}
}
