// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer はプロフィールなど利用者が入力するプレーンテキストから
// HTMLマークアップを取り除き、保存前に長さを制限する。
package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキストのサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// Sanitize はタグを全て除去し、前後の空白を取り除いたテキストを返す。
	// maxRunesが正の場合はその文字数で切り詰める。
	Sanitize(raw string, maxRunes int) string
}

// textSanitizer はbluemondayのStrictPolicyを使ったTextSanitizerの実装。
// Policyはスレッドセーフ。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去したプレーンテキストを返す。
// StrictPolicyはエンティティをエスケープするため、保存用に元の文字へ戻す。
func (s *textSanitizer) Sanitize(raw string, maxRunes int) string {
	if raw == "" {
		return ""
	}

	text := html.UnescapeString(s.policy.Sanitize(raw))
	text = strings.TrimSpace(text)

	if maxRunes > 0 && utf8.RuneCountInString(text) > maxRunes {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return text
}
