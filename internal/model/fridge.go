package model

import "time"

// FridgeItem は冷蔵庫画像から検出された食材1件を表す。
// インジェスト処理でのみ作成され、作成後は変更されない。
// 同一画像から検出された食材は同じImageURLを共有する。
type FridgeItem struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	ItemName   string    `json:"item_name"`
	Confidence float64   `json:"confidence"`
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// DetectedItem は検出器が返す食材名と信頼度の組。
type DetectedItem struct {
	ItemName   string  `json:"item_name"`
	Confidence float64 `json:"confidence"`
}

// DetectionResult は画像と同じ階層に保存される検出結果のJSONドキュメント。
// 画像1枚につき1つ書き込まれ、クライアントから何度も読まれる。
type DetectionResult struct {
	ImageURL   string         `json:"image_url"`
	DetectedAt time.Time      `json:"detected_at"`
	Items      []DetectedItem `json:"items"`
}
