package model

import "time"

// FollowEdge はユーザー間のフォロー関係を表す。
// (FollowerID, FollowingID) の組は一意。
type FollowEdge struct {
	ID          string
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

// FollowingEntry はフォロー一覧の1件。
// フォロー先のプロフィールと最新の冷蔵庫画像で表示用に補完される。
type FollowingEntry struct {
	FollowingID       string    `json:"following_id"`
	DisplayName       string    `json:"display_name"`
	Bio               string    `json:"bio"`
	RefrigeratorBrand string    `json:"refrigerator_brand"`
	LatestFridgeImage string    `json:"latest_fridge_image"`
	FollowedAt        time.Time `json:"created_at"`
}
