// Package profile はユーザープロフィールの参照・保存・削除とプロフィール画像を扱う。
package profile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectkey"
	"github.com/hitoshi/fridgelog/internal/objectstore"
	"github.com/hitoshi/fridgelog/internal/repository"
	"github.com/hitoshi/fridgelog/internal/security"
)

// 入力値の上限
const (
	MaxDisplayNameRunes    = 100
	MaxBioRunes            = 500
	MaxIngredientRunes     = 50
	MaxFavoriteIngredients = 50

	// ImageSize はプロフィール画像の一辺のピクセル数。
	ImageSize = 512
)

// SchemaEnsurer は構造化ストアのスキーマ準備を行う。
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Config はServiceの設定。
type Config struct {
	MaxImageBytes int64
	PresignExpiry time.Duration
}

// Service はプロフィール操作を提供する。
type Service struct {
	repo      repository.ProfileRepository
	store     objectstore.Store
	sanitizer security.TextSanitizer
	schema    SchemaEnsurer
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceを生成する。schemaはnilでもよい。
func NewService(
	repo repository.ProfileRepository,
	store objectstore.Store,
	sanitizer security.TextSanitizer,
	schema SchemaEnsurer,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 10 << 20
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &Service{
		repo:      repo,
		store:     store,
		sanitizer: sanitizer,
		schema:    schema,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Get はプロフィールを取得する。存在しない場合はnil, nilを返す。
func (s *Service) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	s.ensureSchema(ctx)
	return s.repo.FindByUserID(ctx, userID)
}

// Save はプロフィールを部分更新する。存在しない場合は作成する。
// 入力で指定されなかった項目は保存済みの値を維持する。
func (s *Service) Save(ctx context.Context, userID string, in model.ProfileInput) (*model.UserProfile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	s.ensureSchema(ctx)

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := in.Apply(userID, existing, s.now().UTC())
	if err := s.repo.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete はプロフィールとプロフィール画像を削除する。存在しない場合も成功とする。
func (s *Service) Delete(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	s.ensureSchema(ctx)

	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, objectkey.ProfileImageKey(userID)); err != nil {
		return fmt.Errorf("プロフィール画像の削除に失敗しました: %w", err)
	}
	return nil
}

// UploadImage はプロフィール画像を中央で正方形に切り抜いて縮小し、JPEGで保存する。
// 保存した画像の署名付きURLを返す。
func (s *Service) UploadImage(ctx context.Context, userID string, r io.Reader) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("プロフィール画像の読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxImageBytes {
		return "", model.NewImageTooLargeError(s.cfg.MaxImageBytes)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", model.NewProfileImageInvalidError()
	}

	thumb := imaging.Fill(img, ImageSize, ImageSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("プロフィール画像のエンコードに失敗しました: %w", err)
	}

	key := objectkey.ProfileImageKey(userID)
	if err := s.store.Put(ctx, key, buf.Bytes(), objectstore.PutOptions{ContentType: "image/jpeg"}); err != nil {
		return "", fmt.Errorf("プロフィール画像の保存に失敗しました: %w", err)
	}

	return s.store.PresignGet(ctx, key, s.cfg.PresignExpiry)
}

// ImageURL はプロフィール画像の署名付きURLを返す。画像がない場合は空文字を返す。
func (s *Service) ImageURL(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	key := objectkey.ProfileImageKey(userID)
	objects, err := s.store.List(ctx, key)
	if err != nil {
		return "", fmt.Errorf("プロフィール画像の確認に失敗しました: %w", err)
	}
	for _, obj := range objects {
		if obj.Key == key {
			return s.store.PresignGet(ctx, key, s.cfg.PresignExpiry)
		}
	}
	return "", nil
}

// normalize はテキストをサニタイズし、好きな食材を整形する。
func (s *Service) normalize(in model.ProfileInput) (model.ProfileInput, error) {
	if in.DisplayName != nil {
		v := s.sanitizer.Sanitize(*in.DisplayName, MaxDisplayNameRunes)
		in.DisplayName = &v
	}
	if in.Bio != nil {
		v := s.sanitizer.Sanitize(*in.Bio, MaxBioRunes)
		in.Bio = &v
	}
	if in.RefrigeratorBrand != nil {
		v := s.sanitizer.Sanitize(*in.RefrigeratorBrand, MaxDisplayNameRunes)
		in.RefrigeratorBrand = &v
	}

	if in.FavoriteIngredientsSet {
		seen := make(map[string]struct{}, len(in.FavoriteIngredients))
		cleaned := make([]string, 0, len(in.FavoriteIngredients))
		for _, raw := range in.FavoriteIngredients {
			v := s.sanitizer.Sanitize(raw, MaxIngredientRunes)
			if v == "" {
				continue
			}
			k := strings.ToLower(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			cleaned = append(cleaned, v)
		}
		if len(cleaned) > MaxFavoriteIngredients {
			return in, model.NewInvalidRequestError(
				fmt.Sprintf("好きな食材は%d件までです", MaxFavoriteIngredients))
		}
		in.FavoriteIngredients = cleaned
	}
	return in, nil
}

func (s *Service) ensureSchema(ctx context.Context) {
	if s.schema == nil {
		return
	}
	if err := s.schema.Ensure(ctx); err != nil {
		s.logger.Warn("schema bootstrap failed, continuing",
			slog.String("error", err.Error()),
		)
	}
}

func invalidRequest(reason string) error {
	return model.NewInvalidRequestError(reason)
}

func validateUserID(userID string) error {
	if err := objectkey.ValidateUserID(userID); err != nil {
		return model.NewInvalidRequestError(err.Error())
	}
	return nil
}
