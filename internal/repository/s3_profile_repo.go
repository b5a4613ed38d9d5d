package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectkey"
	"github.com/hitoshi/fridgelog/internal/objectstore"
)

// S3ProfileRepo はオブジェクトストレージ上のJSONドキュメントとしてプロフィールを保存する。
// キーは profiles/<user_id>.json。
type S3ProfileRepo struct {
	store objectstore.Store
}

// NewS3ProfileRepo はS3ProfileRepoを生成する。
func NewS3ProfileRepo(store objectstore.Store) *S3ProfileRepo {
	return &S3ProfileRepo{store: store}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *S3ProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	data, err := r.store.Get(ctx, objectkey.ProfileDocumentKey(userID))
	if errors.Is(err, objectstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}

	p := &model.UserProfile{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("プロフィールのデコードに失敗しました: %w", err)
	}
	if p.CognitoUserID == "" {
		p.CognitoUserID = userID
	}
	if p.FavoriteIngredients == nil {
		p.FavoriteIngredients = []string{}
	}
	return p, nil
}

// Save はプロフィールドキュメントを書き込む。
func (r *S3ProfileRepo) Save(ctx context.Context, p *model.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("プロフィールのエンコードに失敗しました: %w", err)
	}

	err = r.store.Put(ctx, objectkey.ProfileDocumentKey(p.CognitoUserID), data, objectstore.PutOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("プロフィールの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はプロフィールドキュメントを削除する。
func (r *S3ProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, objectkey.ProfileDocumentKey(userID)); err != nil {
		return fmt.Errorf("プロフィールの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*S3ProfileRepo)(nil)
