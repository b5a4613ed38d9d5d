package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/fridgelog/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
// favorite_ingredientsはJSONB列に文字列配列として保存する。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	p := &model.UserProfile{}
	var ingredients []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT cognito_user_id, display_name, bio, favorite_ingredients, refrigerator_brand, created_at, updated_at
		 FROM user_profiles WHERE cognito_user_id = $1`,
		userID,
	).Scan(&p.CognitoUserID, &p.DisplayName, &p.Bio, &ingredients, &p.RefrigeratorBrand, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	if err := json.Unmarshal(ingredients, &p.FavoriteIngredients); err != nil {
		return nil, fmt.Errorf("好きな食材のデコードに失敗しました: %w", err)
	}
	if p.FavoriteIngredients == nil {
		p.FavoriteIngredients = []string{}
	}
	return p, nil
}

// Save はプロフィールをUPSERTする。
// UNIQUE(cognito_user_id)制約を利用したINSERT ON CONFLICTで実装し、created_atは維持する。
func (r *PostgresProfileRepo) Save(ctx context.Context, p *model.UserProfile) error {
	ingredients := p.FavoriteIngredients
	if ingredients == nil {
		ingredients = []string{}
	}
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("好きな食材のエンコードに失敗しました: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (cognito_user_id, display_name, bio, favorite_ingredients, refrigerator_brand, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (cognito_user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			bio = EXCLUDED.bio,
			favorite_ingredients = EXCLUDED.favorite_ingredients,
			refrigerator_brand = EXCLUDED.refrigerator_brand,
			updated_at = EXCLUDED.updated_at`,
		p.CognitoUserID, p.DisplayName, p.Bio, string(encoded), p.RefrigeratorBrand, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーのプロフィールを削除する。
func (r *PostgresProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_profiles WHERE cognito_user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("プロフィールの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
