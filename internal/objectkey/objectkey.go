// Package objectkey はオブジェクトストレージ上のキー規約を定義する。
// クライアントとの互換性のため、キー形式は変更してはならない。
package objectkey

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// FridgeContentsPrefix は冷蔵庫画像のルートプレフィックス。
	FridgeContentsPrefix = "fridge-contents/"
	// ProfileDocumentPrefix はプロフィールJSONドキュメントのプレフィックス。
	ProfileDocumentPrefix = "profiles/"
	// ProfileImagePrefix はプロフィール画像のプレフィックス。
	ProfileImagePrefix = "profile/"

	imageExt   = ".jpg"
	sidecarExt = ".json"
	dateLayout = "20060102"
)

// fileNamePattern は <YYYYMMDD>_<dayIndex>.jpg|.json に一致する。
var fileNamePattern = regexp.MustCompile(`^(\d{8})_([1-9]\d*)\.(jpg|json)$`)

// FridgeImage は冷蔵庫画像キーを分解した結果。
type FridgeImage struct {
	Key      string
	UserID   string
	Date     string // YYYYMMDD
	DayIndex int
	// Sidecar はキーが画像ではなく検出結果JSONを指すことを表す。
	Sidecar bool
}

// FridgeImageKey は冷蔵庫画像のキーを組み立てる。
// 形式: fridge-contents/<user_id>/<YYYYMMDD>_<dayIndex>.jpg
func FridgeImageKey(userID string, date time.Time, dayIndex int) string {
	return fmt.Sprintf("%s%s/%s_%d%s", FridgeContentsPrefix, userID, date.Format(dateLayout), dayIndex, imageExt)
}

// DecodeEventKey はS3イベント通知のキーをデコードする。
// 通知のキーはURLエンコードされ、スペースは+になる。デコードは通知の受け口で一度だけ行う。
func DecodeEventKey(rawKey string) (string, error) {
	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return "", fmt.Errorf("キーのデコードに失敗しました: %w", err)
	}
	return key, nil
}

// ParseFridgeImageKey はデコード済みのキーを検証して分解する。
// 規約に一致しないキーはエラーを返す。
func ParseFridgeImageKey(key string) (*FridgeImage, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("キーの階層数が不正です: %s", key)
	}
	if parts[0]+"/" != FridgeContentsPrefix {
		return nil, fmt.Errorf("キーのプレフィックスが不正です: %s", key)
	}
	if err := ValidateUserID(parts[1]); err != nil {
		return nil, err
	}

	m := fileNamePattern.FindStringSubmatch(parts[2])
	if m == nil {
		return nil, fmt.Errorf("ファイル名が規約に一致しません: %s", parts[2])
	}
	if _, err := time.Parse(dateLayout, m[1]); err != nil {
		return nil, fmt.Errorf("日付が不正です: %s", m[1])
	}
	dayIndex, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("日内連番が不正です: %s", m[2])
	}

	return &FridgeImage{
		Key:      key,
		UserID:   parts[1],
		Date:     m[1],
		DayIndex: dayIndex,
		Sidecar:  m[3] == "json",
	}, nil
}

// SidecarKey は画像キーに対応する検出結果JSONのキーを返す。
// 拡張子 .jpg を .json に置き換える。
func SidecarKey(imageKey string) string {
	return strings.TrimSuffix(imageKey, imageExt) + sidecarExt
}

// IsImageKey はキーが冷蔵庫画像（.jpg）を指すかを返す。
func IsImageKey(key string) bool {
	return strings.HasPrefix(key, FridgeContentsPrefix) && strings.HasSuffix(key, imageExt)
}

// UserFridgePrefix はユーザーの冷蔵庫画像一覧を取得するためのプレフィックスを返す。
func UserFridgePrefix(userID string) string {
	return FridgeContentsPrefix + userID + "/"
}

// DayPrefix は指定日のアップロード済み画像を数えるためのプレフィックスを返す。
func DayPrefix(userID string, date time.Time) string {
	return UserFridgePrefix(userID) + date.Format(dateLayout) + "_"
}

// UserIDFromFridgeKey は fridge-contents/<user_id>/... 形式のキーからユーザーIDを取り出す。
func UserIDFromFridgeKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, FridgeContentsPrefix)
	if !ok {
		return "", false
	}
	userID, _, ok := strings.Cut(rest, "/")
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// ProfileDocumentKey はプロフィールJSONドキュメントのキーを返す。
func ProfileDocumentKey(userID string) string {
	return ProfileDocumentPrefix + userID + sidecarExt
}

// ProfileImageKey はプロフィール画像のキーを返す。
func ProfileImageKey(userID string) string {
	return ProfileImagePrefix + userID
}

// ValidateUserID はユーザーIDがキーの1階層として使えるかを検証する。
func ValidateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("ユーザーIDが空です")
	}
	if strings.ContainsAny(userID, "/\\") {
		return fmt.Errorf("ユーザーIDに使用できない文字が含まれています: %q", userID)
	}
	if userID == "." || userID == ".." {
		return fmt.Errorf("ユーザーIDが不正です: %q", userID)
	}
	return nil
}
