// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, storage, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeInvalidAction       = "INVALID_ACTION"
	ErrCodeInvalidObjectKey    = "INVALID_OBJECT_KEY"
	ErrCodeSelfFollow          = "SELF_FOLLOW"
	ErrCodeProfileImageInvalid = "PROFILE_IMAGE_INVALID"
	ErrCodeImageTooLarge       = "IMAGE_TOO_LARGE"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewInvalidRequestError は入力不正エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewInvalidActionError は未知のactionが指定された場合のエラーを生成する。
func NewInvalidActionError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAction,
		Message:  fmt.Sprintf("無効なアクションです: %q", action),
		Category: "validation",
		Action:   "actionには follow、unfollow、checkFollow、getFollowing のいずれかを指定してください。",
	}
}

// NewInvalidObjectKeyError はオブジェクトキーが規約に一致しない場合のエラーを生成する。
func NewInvalidObjectKeyError(key string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidObjectKey,
		Message:  fmt.Sprintf("オブジェクトキーが規約に一致しません: %s", key),
		Category: "validation",
		Action:   "画像は fridge-contents/<user_id>/<YYYYMMDD>_<n>.jpg の形式でアップロードしてください。",
	}
}

// NewSelfFollowError は自分自身をフォローしようとした場合のエラーを生成する。
func NewSelfFollowError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfFollow,
		Message:  "自分自身をフォローすることはできません。",
		Category: "validation",
		Action:   "フォローするユーザーを確認してください。",
	}
}

// NewProfileImageInvalidError はプロフィール画像をデコードできない場合のエラーを生成する。
func NewProfileImageInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileImageInvalid,
		Message:  "プロフィール画像を読み込めませんでした。",
		Category: "validation",
		Action:   "JPEGまたはPNG形式の画像を指定してください。",
	}
}

// NewImageTooLargeError は画像サイズが上限を超えた場合のエラーを生成する。
func NewImageTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodeImageTooLarge,
		Message:  fmt.Sprintf("画像サイズが上限（%dバイト）を超えています。", limit),
		Category: "validation",
		Action:   "画像を縮小してから再度アップロードしてください。",
	}
}

// NewUnauthorizedError は呼び出し元ユーザーを特定できない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は呼び出し元が他ユーザーのリソースを変更しようとした場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "他のユーザーのリソースは変更できません。",
		Category: "auth",
		Action:   "自分のユーザーIDで操作してください。",
	}
}

// NewRateLimitError はリクエスト数が上限を超えた場合のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
