package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fridgelog/internal/model"
)

// PostgresFridgeItemRepo はPostgreSQLを使用した検出食材リポジトリ。
type PostgresFridgeItemRepo struct {
	db *sql.DB
}

// NewPostgresFridgeItemRepo はPostgresFridgeItemRepoを生成する。
func NewPostgresFridgeItemRepo(db *sql.DB) *PostgresFridgeItemRepo {
	return &PostgresFridgeItemRepo{db: db}
}

// Create は食材1件を作成する。
func (r *PostgresFridgeItemRepo) Create(ctx context.Context, item *model.FridgeItem) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO fridge_items (user_id, item_name, confidence, image_url, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		item.UserID, item.ItemName, item.Confidence, item.ImageURL, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("食材の登録に失敗しました (item=%s): %w", item.ItemName, err)
	}
	return nil
}

// ListByUser はユーザーの食材をcreated_at降順で返す。
func (r *PostgresFridgeItemRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error) {
	query := `SELECT id, user_id, item_name, confidence, image_url, created_at
		 FROM fridge_items
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id ASC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("食材一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []*model.FridgeItem
	for rows.Next() {
		item := &model.FridgeItem{}
		if err := rows.Scan(&item.ID, &item.UserID, &item.ItemName, &item.Confidence, &item.ImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("食材のスキャンに失敗しました: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("食材一覧の走査に失敗しました: %w", err)
	}
	return items, nil
}

// LatestImageByUser はユーザーの最新の画像URLを返す。
func (r *PostgresFridgeItemRepo) LatestImageByUser(ctx context.Context, userID string) (string, error) {
	var imageURL string
	err := r.db.QueryRowContext(ctx,
		`SELECT image_url FROM fridge_items
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&imageURL)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("最新画像の取得に失敗しました: %w", err)
	}
	return imageURL, nil
}

// DuplicateBatchStats は再インジェストで同じ画像に複数のバッチが登録された状況の集計。
// 行は削除せず、集計のみを行う。
type DuplicateBatchStats struct {
	// Images は2つ以上のバッチを持つimage_urlの数。
	Images int64
	// ExtraBatches は最初のバッチを除いたバッチ数の合計。
	ExtraBatches int64
}

// duplicateBatchStatsQuery はcreated_atの異なるバッチをimage_urlごとに数える。
// 1回のインジェストは全行に同じcreated_atを付けるため、created_atの種類数がバッチ数になる。
const duplicateBatchStatsQuery = `SELECT COUNT(*), COALESCE(SUM(batches - 1), 0)
FROM (
    SELECT image_url, COUNT(DISTINCT created_at) AS batches
    FROM fridge_items
    GROUP BY image_url
    HAVING COUNT(DISTINCT created_at) > 1
) AS d`

// DuplicateBatchStats は重複バッチを集計する。読み取りのみ。
func (r *PostgresFridgeItemRepo) DuplicateBatchStats(ctx context.Context) (DuplicateBatchStats, error) {
	var stats DuplicateBatchStats
	err := r.db.QueryRowContext(ctx, duplicateBatchStatsQuery).Scan(&stats.Images, &stats.ExtraBatches)
	if err != nil {
		return DuplicateBatchStats{}, fmt.Errorf("重複バッチの集計に失敗しました: %w", err)
	}
	return stats, nil
}

// compile-time interface check
var _ FridgeItemRepository = (*PostgresFridgeItemRepo)(nil)
