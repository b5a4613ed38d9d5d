package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/fridgelog/internal/config"
	"github.com/hitoshi/fridgelog/internal/database"
	"github.com/hitoshi/fridgelog/internal/detection"
	"github.com/hitoshi/fridgelog/internal/fridge"
	"github.com/hitoshi/fridgelog/internal/ingestion"
	"github.com/hitoshi/fridgelog/internal/metrics"
	"github.com/hitoshi/fridgelog/internal/objectstore"
	"github.com/hitoshi/fridgelog/internal/profile"
	"github.com/hitoshi/fridgelog/internal/repository"
	"github.com/hitoshi/fridgelog/internal/security"
	"github.com/hitoshi/fridgelog/internal/social"
)

// services はプロセス内で共有するドメインサービス一式。
type services struct {
	registry  *prometheus.Registry
	collector *metrics.Collector

	ingestion *ingestion.Service
	social    *social.Service
	profile   *profile.Service
	fridge    *fridge.Service
}

// backends はサービス構築に使う外部ストアのクライアント。
// テストではstoreにobjectstoretest.MemoryStoreを渡し、AWSクライアントを使わずに構築できる。
type backends struct {
	db        *sql.DB
	store     objectstore.Store
	dynamo    repository.DynamoDBAPI
	detector  detection.Detector
	bootstrap *database.SchemaBootstrapper
}

// loadBackends は設定に従ってAWSクライアントとオブジェクトストアを構築する。
// DynamoDBとRekognitionのクライアントは設定で選ばれた場合のみ生成する。
func loadBackends(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (*backends, error) {
	awsCfg, err := objectstore.LoadAWSConfig(ctx, cfg.AWSRegion, cfg.S3AccessKeyID, cfg.S3SecretAccessKey)
	if err != nil {
		return nil, err
	}

	s3Store := objectstore.NewS3Store(awsCfg, objectstore.S3Config{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	store, err := objectstore.NewPresignCache(s3Store, cfg.PresignCacheSize)
	if err != nil {
		return nil, err
	}

	b := &backends{
		db:        db,
		store:     store,
		detector:  newDetector(cfg, awsCfg),
		bootstrap: database.NewSchemaBootstrapper(cfg.DatabaseURL, logger),
	}
	if cfg.ProfileBackend == config.BackendDynamoDB || cfg.FollowBackend == config.BackendDynamoDB {
		b.dynamo = dynamodb.NewFromConfig(awsCfg)
	}
	return b, nil
}

// newDetector は設定に応じた食材検出器を返す。
func newDetector(cfg *config.Config, awsCfg aws.Config) detection.Detector {
	if cfg.Detector == config.DetectorRekognition {
		return detection.NewRekognitionDetector(rekognition.NewFromConfig(awsCfg), float32(cfg.RekognitionMinConfidence))
	}
	return detection.NewRandomDetector()
}

// newProfileRepo は設定されたバックエンドのプロフィールリポジトリを返す。
func newProfileRepo(cfg *config.Config, b *backends) (repository.ProfileRepository, error) {
	switch cfg.ProfileBackend {
	case config.BackendPostgres:
		return repository.NewPostgresProfileRepo(b.db), nil
	case config.BackendDynamoDB:
		if b.dynamo == nil {
			return nil, fmt.Errorf("DynamoDBクライアントが設定されていません")
		}
		return repository.NewDynamoDBProfileRepo(b.dynamo, cfg.DynamoDBProfilesTable), nil
	case config.BackendS3:
		return repository.NewS3ProfileRepo(b.store), nil
	default:
		return nil, fmt.Errorf("未対応のプロフィールバックエンドです: %s", cfg.ProfileBackend)
	}
}

// newFollowRepo は設定されたバックエンドのフォローリポジトリを返す。
func newFollowRepo(cfg *config.Config, b *backends) (repository.FollowRepository, error) {
	switch cfg.FollowBackend {
	case config.BackendPostgres:
		return repository.NewPostgresFollowRepo(b.db), nil
	case config.BackendDynamoDB:
		if b.dynamo == nil {
			return nil, fmt.Errorf("DynamoDBクライアントが設定されていません")
		}
		return repository.NewDynamoDBFollowRepo(b.dynamo, cfg.DynamoDBFollowsTable), nil
	default:
		return nil, fmt.Errorf("未対応のフォローバックエンドです: %s", cfg.FollowBackend)
	}
}

// buildServices はバックエンドからドメインサービスを組み立てる。
func buildServices(cfg *config.Config, b *backends, logger *slog.Logger) (*services, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	items := repository.NewPostgresFridgeItemRepo(b.db)

	profiles, err := newProfileRepo(cfg, b)
	if err != nil {
		return nil, err
	}
	follows, err := newFollowRepo(cfg, b)
	if err != nil {
		return nil, err
	}

	ingestOpts := []ingestion.Option{ingestion.WithMetrics(collector)}
	if b.bootstrap != nil {
		ingestOpts = append(ingestOpts, ingestion.WithSchemaEnsurer(b.bootstrap))
	}
	ingestSvc := ingestion.NewService(b.store, cfg.S3Bucket, b.detector, items, logger, ingestOpts...)

	// プロフィールのスキーマ準備はPostgresバックエンドのときだけ行う
	var profileSchema profile.SchemaEnsurer
	if cfg.ProfileBackend == config.BackendPostgres && b.bootstrap != nil {
		profileSchema = b.bootstrap
	}
	profileSvc := profile.NewService(profiles, b.store, security.NewTextSanitizer(), profileSchema, profile.Config{
		MaxImageBytes: cfg.MaxUploadBytes,
		PresignExpiry: cfg.PresignExpiry,
	}, logger)

	var ingester fridge.Ingester
	if cfg.IngestOnUpload {
		ingester = ingestSvc
	}
	fridgeSvc := fridge.NewService(b.store, items, ingester, fridge.Config{
		Bucket:         cfg.S3Bucket,
		MaxUploadBytes: cfg.MaxUploadBytes,
		PresignExpiry:  cfg.PresignExpiry,
		IngestOnUpload: cfg.IngestOnUpload,
	}, logger)

	return &services{
		registry:  registry,
		collector: collector,
		ingestion: ingestSvc,
		social:    social.NewService(follows, profiles, items, collector, logger),
		profile:   profileSvc,
		fridge:    fridgeSvc,
	}, nil
}
