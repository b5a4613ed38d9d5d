// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/hitoshi/fridgelog/internal/config"
	"github.com/hitoshi/fridgelog/internal/database"
	"github.com/hitoshi/fridgelog/internal/function"
	"github.com/hitoshi/fridgelog/internal/handler"
	"github.com/hitoshi/fridgelog/internal/logger"
	"github.com/hitoshi/fridgelog/internal/metrics"
	"github.com/hitoshi/fridgelog/internal/middleware"
	"github.com/hitoshi/fridgelog/internal/repository"
	"github.com/hitoshi/fridgelog/internal/worker/reconcile"
)

// Init はアプリケーションの初期化を行う。
// .envがあれば環境変数に読み込み、JSON構造化ログをセットアップしてからConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. .envの読み込み（既存の環境変数は上書きしない）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 2. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 3. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("bucket", cfg.S3Bucket),
		slog.String("profile_backend", cfg.ProfileBackend),
		slog.String("follow_backend", cfg.FollowBackend),
		slog.String("detector", cfg.Detector),
	)

	switch {
	case cmd == CommandMigrate:
		return runMigrate(cfg)
	case cmd == CommandWorker:
		return runWorker(cfg)
	case cmd.IsLambda():
		return runLambda(cmd, cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. ストアクライアントとサービスの初期化
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := loadBackends(ctx, cfg, db, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize backends: %w", err)
	}
	svcs, err := buildServices(cfg, b, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	// 3. ルーターの構築（設定はreq/min単位）
	rateLimiter := middleware.NewRateLimiter(
		middleware.PerMinuteRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitUpload),
	)
	defer rateLimiter.Stop()

	if cfg.EventsSharedSecret == "" {
		slog.Warn("EVENTS_SHARED_SECRET is not set, /events/s3 is disabled")
	}
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		EventSecret:       cfg.EventsSharedSecret,
		StatusRecorder:    svcs.collector,
		HealthChecker:     db,
		Gatherer:          svcs.registry,
		FollowService:     svcs.social,
		ProfileService:    svcs.profile,
		FridgeService:     svcs.fridge,
		EventIngester:     svcs.ingestion,
	})

	// 4. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 起動直後とRECONCILE_INTERVALごとに重複バッチを集計する。食材行は変更しない。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ワーカーはメトリクスを公開しないため記録先はNop
	reconcile.NewJob(repository.NewPostgresFridgeItemRepo(db), metrics.Nop{}, slog.Default()).Start(ctx, cfg.ReconcileInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runLambda はLambdaランタイムにハンドラーを登録する。
// ストアクライアントはプロセスごとに1回だけ生成し、呼び出し間で共有する。
func runLambda(cmd Command, cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL, database.LambdaPool)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	b, err := loadBackends(context.Background(), cfg, db, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to initialize backends: %w", err)
	}
	svcs, err := buildServices(cfg, b, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to build services: %w", err)
	}

	h, err := lambdaHandler(cmd, cfg, svcs)
	if err != nil {
		return err
	}
	lambda.Start(h)
	return nil
}

// lambdaHandler はコマンドに対応するLambdaハンドラー関数を返す。
func lambdaHandler(cmd Command, cfg *config.Config, svcs *services) (any, error) {
	logger := slog.Default()
	switch cmd {
	case CommandLambdaIngest:
		return function.NewIngestFunction(svcs.ingestion, logger).Handle, nil
	case CommandLambdaFollow:
		return function.NewFollowFunction(svcs.social, logger).Handle, nil
	case CommandLambdaProfile:
		return function.NewProfileFunction(svcs.profile, cfg.CORSAllowedOrigin, logger).Handle, nil
	case CommandLambdaResolver:
		return function.NewResolverFunction(svcs.profile, logger).Handle, nil
	default:
		return nil, fmt.Errorf("unknown lambda command: %s", cmd)
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, _, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(endpoint string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// URLとして解釈できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
