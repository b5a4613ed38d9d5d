// Package ingestion は冷蔵庫画像のアップロードを起点に食材を検出し、
// 検出結果のJSONと食材レコードを保存する。
package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/fridgelog/internal/detection"
	"github.com/hitoshi/fridgelog/internal/metrics"
	"github.com/hitoshi/fridgelog/internal/model"
	"github.com/hitoshi/fridgelog/internal/objectkey"
	"github.com/hitoshi/fridgelog/internal/objectstore"
	"github.com/hitoshi/fridgelog/internal/repository"
)

// ErrSkipped は処理対象外のオブジェクト（検出結果JSONなど）であることを表す。
var ErrSkipped = errors.New("object skipped")

// ObjectRef はオブジェクト作成通知の1レコード。
type ObjectRef struct {
	Bucket string
	Key    string
}

// Result は画像1枚のインジェスト結果。
type Result struct {
	ImageURL string
	JSONURL  string
	Items    []model.DetectedItem
}

// SchemaEnsurer は構造化ストアのスキーマ準備を行う。
type SchemaEnsurer interface {
	Ensure(ctx context.Context) error
}

// Service はインジェスト処理を提供する。
type Service struct {
	store    objectstore.Store
	bucket   string
	detector detection.Detector
	items    repository.FridgeItemRepository
	schema   SchemaEnsurer
	metrics  metrics.MetricsCollector
	logger   *slog.Logger
	now      func() time.Time
}

// Option はServiceの任意設定。
type Option func(*Service)

// WithSchemaEnsurer は処理前に呼び出すスキーマ準備を設定する。
func WithSchemaEnsurer(schema SchemaEnsurer) Option {
	return func(s *Service) { s.schema = schema }
}

// WithMetrics はメトリクスコレクターを設定する。
func WithMetrics(m metrics.MetricsCollector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock は現在時刻の取得関数を設定する。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService はServiceを生成する。bucketは通知を受け付けるバケット名。
func NewService(
	store objectstore.Store,
	bucket string,
	detector detection.Detector,
	items repository.FridgeItemRepository,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:    store,
		bucket:   bucket,
		detector: detector,
		items:    items,
		metrics:  metrics.Nop{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process は画像1枚を処理する。
//
// 検出結果JSONを画像と同じ階層に公開読み取りで書き込んだ後、食材を1件ずつ登録する。
// 登録の途中で失敗した場合は残りを中断してエラーを返す。登録済みの行は取り消さない。
func (s *Service) Process(ctx context.Context, ref ObjectRef) (*Result, error) {
	start := s.now()

	if s.schema != nil {
		if err := s.schema.Ensure(ctx); err != nil {
			s.logger.Warn("schema bootstrap failed, continuing",
				slog.String("error", err.Error()),
			)
		}
	}

	if s.bucket != "" && ref.Bucket != "" && ref.Bucket != s.bucket {
		s.metrics.RecordIngestionFailure("parse")
		return nil, model.NewInvalidRequestError(fmt.Sprintf("想定外のバケットです: %s", ref.Bucket))
	}

	img, err := objectkey.ParseFridgeImageKey(ref.Key)
	if err != nil {
		s.metrics.RecordIngestionFailure("parse")
		s.logger.Warn("rejected object key",
			slog.String("key", ref.Key),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInvalidObjectKeyError(ref.Key)
	}
	if img.Sidecar {
		s.metrics.RecordIngestionSkipped()
		return nil, ErrSkipped
	}

	detected, err := s.detector.Detect(ctx, detection.Image{Bucket: s.bucketFor(ref), Key: img.Key})
	if err != nil {
		s.metrics.RecordIngestionFailure("detect")
		return nil, fmt.Errorf("食材の検出に失敗しました: %w", err)
	}

	detectedAt := s.now().UTC()
	imageURL := s.store.PublicURL(img.Key)
	sidecarKey := objectkey.SidecarKey(img.Key)

	doc, err := json.MarshalIndent(model.DetectionResult{
		ImageURL:   imageURL,
		DetectedAt: detectedAt,
		Items:      detected,
	}, "", "  ")
	if err != nil {
		s.metrics.RecordIngestionFailure("sidecar")
		return nil, fmt.Errorf("検出結果のエンコードに失敗しました: %w", err)
	}

	err = s.store.Put(ctx, sidecarKey, doc, objectstore.PutOptions{
		ContentType: "application/json",
		PublicRead:  true,
	})
	if err != nil {
		s.metrics.RecordIngestionFailure("sidecar")
		return nil, fmt.Errorf("検出結果の保存に失敗しました: %w", err)
	}

	for i, d := range detected {
		item := &model.FridgeItem{
			UserID:     img.UserID,
			ItemName:   d.ItemName,
			Confidence: d.Confidence,
			ImageURL:   imageURL,
			CreatedAt:  detectedAt,
		}
		if err := s.items.Create(ctx, item); err != nil {
			s.metrics.RecordIngestionFailure("store")
			return nil, fmt.Errorf("食材の登録に失敗しました (%d/%d件目): %w", i+1, len(detected), err)
		}
	}

	s.metrics.RecordIngestionSuccess(len(detected))
	s.metrics.RecordIngestionLatency(s.now().Sub(start))
	s.logger.Info("fridge image ingested",
		slog.String("user_id", img.UserID),
		slog.String("key", img.Key),
		slog.Int("items", len(detected)),
	)

	return &Result{
		ImageURL: imageURL,
		JSONURL:  s.store.PublicURL(sidecarKey),
		Items:    detected,
	}, nil
}

// HandleEvent は通知レコードを順番に処理する。
// 対象外のレコードは読み飛ばし、最初の失敗で処理を中断する。
func (s *Service) HandleEvent(ctx context.Context, refs []ObjectRef) ([]*Result, error) {
	results := make([]*Result, 0, len(refs))
	for _, ref := range refs {
		res, err := s.Process(ctx, ref)
		if errors.Is(err, ErrSkipped) {
			continue
		}
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Service) bucketFor(ref ObjectRef) string {
	if ref.Bucket != "" {
		return ref.Bucket
	}
	return s.bucket
}
