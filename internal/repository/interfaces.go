// Package repository はデータ永続化のインターフェースと各バックエンドの実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/fridgelog/internal/model"
)

// FridgeItemRepository は検出食材データの永続化インターフェース。
type FridgeItemRepository interface {
	// Create は食材1件を作成し、採番されたIDをitem.IDに設定する。
	Create(ctx context.Context, item *model.FridgeItem) error

	// ListByUser はユーザーの食材をcreated_at降順で返す。limitが0以下の場合は全件を返す。
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error)

	// LatestImageByUser はユーザーの最新の画像URLを返す。存在しない場合は空文字を返す。
	LatestImageByUser(ctx context.Context, userID string) (string, error)
}

// FollowRepository はフォロー関係の永続化インターフェース。
type FollowRepository interface {
	// Create はフォロー関係を作成する。同一ペアが既に存在する場合は何もせずfalseを返す。
	Create(ctx context.Context, edge *model.FollowEdge) (bool, error)

	// Delete はフォロー関係を削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, followerID, followingID string) error

	// Exists はフォロー関係が存在するかを返す。
	Exists(ctx context.Context, followerID, followingID string) (bool, error)

	// ListByFollower はフォロー中のユーザーをcreated_at降順で返す。
	ListByFollower(ctx context.Context, followerID string) ([]*model.FollowEdge, error)
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)

	// Save はプロフィールを丸ごと書き込む。存在しない場合は作成する。
	Save(ctx context.Context, profile *model.UserProfile) error

	// DeleteByUserID は指定ユーザーのプロフィールを削除する。存在しない場合もエラーにしない。
	DeleteByUserID(ctx context.Context, userID string) error
}
