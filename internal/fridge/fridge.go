// Package fridge は冷蔵庫画像のアップロード、履歴、エクスプローラー、ユーザー検索を提供する。
package fridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/fridgelog/internal/ingestion"
	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectkey"
	"github.com/hitoshi/fridgelog/internal/objectstore"
	"github.com/hitoshi/fridgelog/internal/repository"
)

// 画像ごとの処理状態
const (
	StatusProcessing = "processing"
	StatusDetected   = "detected"
)

// defaultConcurrency は署名付きURLと検出結果の取得を並行させる上限。
const defaultConcurrency = 8

// Ingester はアップロード直後にプロセス内で実行するインジェスト処理。
type Ingester interface {
	Process(ctx context.Context, ref ingestion.ObjectRef) (*ingestion.Result, error)
}

// Config はServiceの設定。
type Config struct {
	Bucket         string
	MaxUploadBytes int64
	PresignExpiry  time.Duration
	IngestOnUpload bool
	Concurrency    int
}

// UploadResult はアップロード結果。
type UploadResult struct {
	Key           string               `json:"key"`
	ImageURL      string               `json:"imageUrl"`
	SidecarKey    string               `json:"sidecarKey"`
	DetectedItems []model.DetectedItem `json:"detectedItems,omitempty"`
}

// HistoryEntry は履歴の1枚分。検出結果JSONがまだない場合はStatusがprocessingになる。
type HistoryEntry struct {
	Key        string                 `json:"key"`
	ImageURL   string                 `json:"imageUrl"`
	UploadedAt time.Time              `json:"uploadedAt"`
	Status     string                 `json:"status"`
	Detection  *model.DetectionResult `json:"detection,omitempty"`
}

// ExploreEntry はエクスプローラーに表示する画像1枚分。
type ExploreEntry struct {
	UserID     string    `json:"userId"`
	Key        string    `json:"key"`
	ImageURL   string    `json:"imageUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UserSummary はユーザー検索結果の1件。
type UserSummary struct {
	UserID    string `json:"userId"`
	PostCount int    `json:"postCount"`
}

// Service は冷蔵庫画像の操作を提供する。
type Service struct {
	store    objectstore.Store
	items    repository.FridgeItemRepository
	ingester Ingester
	cfg      Config
	logger   *slog.Logger
}

// NewService はServiceを生成する。ingesterはnilでもよい。
func NewService(
	store objectstore.Store,
	items repository.FridgeItemRepository,
	ingester Ingester,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Service{
		store:    store,
		items:    items,
		ingester: ingester,
		cfg:      cfg,
		logger:   logger,
	}
}

// Upload は冷蔵庫画像を fridge-contents/<user_id>/<YYYYMMDD>_<n>.jpg に保存する。
// nは同じ日のアップロード済み枚数+1。
func (s *Service) Upload(ctx context.Context, userID string, body io.Reader, now time.Time) (*UploadResult, error) {
	if err := objectkey.ValidateUserID(userID); err != nil {
		return nil, model.NewInvalidRequestError(err.Error())
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, model.NewImageTooLargeError(s.cfg.MaxUploadBytes)
	}
	if len(data) == 0 || http.DetectContentType(data) != "image/jpeg" {
		return nil, model.NewInvalidRequestError("JPEG画像を指定してください")
	}

	dayIndex, err := s.nextDayIndex(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	key := objectkey.FridgeImageKey(userID, now, dayIndex)
	err = s.store.Put(ctx, key, data, objectstore.PutOptions{
		ContentType: "image/jpeg",
		Metadata: map[string]string{
			"uploadedBy": userID,
			"uploadedAt": now.UTC().Format(time.RFC3339),
			"type":       "fridge-contents",
			"dayIndex":   strconv.Itoa(dayIndex),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("画像の保存に失敗しました: %w", err)
	}

	result := &UploadResult{
		Key:        key,
		ImageURL:   s.store.PublicURL(key),
		SidecarKey: objectkey.SidecarKey(key),
	}

	if s.cfg.IngestOnUpload && s.ingester != nil {
		res, err := s.ingester.Process(ctx, ingestion.ObjectRef{Bucket: s.cfg.Bucket, Key: key})
		if err != nil {
			// 画像は保存済みのため、検出失敗はアップロード失敗として扱わない
			s.logger.Warn("in-process ingestion failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else {
			result.DetectedItems = res.Items
		}
	}

	s.logger.Info("fridge image uploaded",
		slog.String("user_id", userID),
		slog.String("key", key),
		slog.Int("day_index", dayIndex),
	)
	return result, nil
}

func (s *Service) nextDayIndex(ctx context.Context, userID string, now time.Time) (int, error) {
	objects, err := s.store.List(ctx, objectkey.DayPrefix(userID, now))
	if err != nil {
		return 0, fmt.Errorf("当日のアップロード枚数の取得に失敗しました: %w", err)
	}
	count := 0
	for _, obj := range objects {
		if objectkey.IsImageKey(obj.Key) {
			count++
		}
	}
	return count + 1, nil
}

// History はユーザーの冷蔵庫画像を新しい順に返す。
func (s *Service) History(ctx context.Context, userID string) ([]HistoryEntry, error) {
	if err := objectkey.ValidateUserID(userID); err != nil {
		return nil, model.NewInvalidRequestError(err.Error())
	}

	images, err := s.listImages(ctx, objectkey.UserFridgePrefix(userID))
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, obj := range images {
		g.Go(func() error {
			url, err := s.store.PresignGet(gctx, obj.Key, s.cfg.PresignExpiry)
			if err != nil {
				return fmt.Errorf("署名付きURLの生成に失敗しました: %w", err)
			}
			entry := HistoryEntry{
				Key:        obj.Key,
				ImageURL:   url,
				UploadedAt: obj.LastModified,
				Status:     StatusProcessing,
			}
			detection, err := s.readSidecar(gctx, objectkey.SidecarKey(obj.Key))
			if err != nil {
				return err
			}
			if detection != nil {
				entry.Status = StatusDetected
				entry.Detection = detection
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// readSidecar は検出結果JSONを読む。未作成または壊れている場合はnilを返す。
func (s *Service) readSidecar(ctx context.Context, key string) (*model.DetectionResult, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, objectstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("検出結果の取得に失敗しました: %w", err)
	}
	var result model.DetectionResult
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&result); err != nil {
		s.logger.Warn("ignoring unreadable detection sidecar",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}
	return &result, nil
}

// Explore は全ユーザーの冷蔵庫画像を新しい順に最大limit件返す。limitが0以下なら全件。
func (s *Service) Explore(ctx context.Context, limit int) ([]ExploreEntry, error) {
	images, err := s.listImages(ctx, objectkey.FridgeContentsPrefix)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(images) > limit {
		images = images[:limit]
	}

	entries := make([]ExploreEntry, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, obj := range images {
		g.Go(func() error {
			url, err := s.store.PresignGet(gctx, obj.Key, s.cfg.PresignExpiry)
			if err != nil {
				return fmt.Errorf("署名付きURLの生成に失敗しました: %w", err)
			}
			userID, _ := objectkey.UserIDFromFridgeKey(obj.Key)
			entries[i] = ExploreEntry{
				UserID:     userID,
				Key:        obj.Key,
				ImageURL:   url,
				UploadedAt: obj.LastModified,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Items はユーザーの食材レコードを返す。
func (s *Service) Items(ctx context.Context, userID string, limit int) ([]*model.FridgeItem, error) {
	if err := objectkey.ValidateUserID(userID); err != nil {
		return nil, model.NewInvalidRequestError(err.Error())
	}
	items, err := s.items.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*model.FridgeItem{}
	}
	return items, nil
}

// listImages はprefix配下の画像キーをアップロード日時の新しい順に返す。
func (s *Service) listImages(ctx context.Context, prefix string) ([]objectstore.ObjectInfo, error) {
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("画像一覧の取得に失敗しました: %w", err)
	}
	images := make([]objectstore.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if objectkey.IsImageKey(obj.Key) {
			images = append(images, obj)
		}
	}
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].LastModified.Equal(images[j].LastModified) {
			return images[i].Key > images[j].Key
		}
		return images[i].LastModified.After(images[j].LastModified)
	})
	return images, nil
}
