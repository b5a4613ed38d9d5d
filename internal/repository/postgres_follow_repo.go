package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fridgelog/internal/model"
)

// PostgresFollowRepo はPostgreSQLを使用したフォローリポジトリ。
type PostgresFollowRepo struct {
	db *sql.DB
}

// NewPostgresFollowRepo はPostgresFollowRepoを生成する。
func NewPostgresFollowRepo(db *sql.DB) *PostgresFollowRepo {
	return &PostgresFollowRepo{db: db}
}

// Create はフォロー関係を作成する。
// UNIQUE(follower_id, following_id)制約を利用したON CONFLICT DO NOTHINGで冪等にする。
func (r *PostgresFollowRepo) Create(ctx context.Context, edge *model.FollowEdge) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO follows (id, follower_id, following_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		edge.ID, edge.FollowerID, edge.FollowingID, edge.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete はフォロー関係を削除する。
func (r *PostgresFollowRepo) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("フォローの削除に失敗しました: %w", err)
	}
	return nil
}

// Exists はフォロー関係が存在するかを返す。
func (r *PostgresFollowRepo) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("フォロー状態の確認に失敗しました: %w", err)
	}
	return exists, nil
}

// ListByFollower はフォロー中のユーザーをcreated_at降順で返す。
func (r *PostgresFollowRepo) ListByFollower(ctx context.Context, followerID string) ([]*model.FollowEdge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, follower_id, following_id, created_at
		 FROM follows
		 WHERE follower_id = $1
		 ORDER BY created_at DESC`,
		followerID,
	)
	if err != nil {
		return nil, fmt.Errorf("フォロー一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var edges []*model.FollowEdge
	for rows.Next() {
		edge := &model.FollowEdge{}
		if err := rows.Scan(&edge.ID, &edge.FollowerID, &edge.FollowingID, &edge.CreatedAt); err != nil {
			return nil, fmt.Errorf("フォローのスキャンに失敗しました: %w", err)
		}
		edges = append(edges, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("フォロー一覧の走査に失敗しました: %w", err)
	}
	return edges, nil
}

// compile-time interface check
var _ FollowRepository = (*PostgresFollowRepo)(nil)
