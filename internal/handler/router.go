package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/fridgelog/internal/metrics"
	"github.com/hitoshi/fridgelog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	StatusRecorder    middleware.StatusRecorder
	// EventSecret が空の場合 /events/s3 はマウントしない
	EventSecret string

	// 運用
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer

	// ドメイン
	FollowService  FollowServiceInterface
	ProfileService ProfileServiceInterface
	FridgeService  FridgeServiceInterface
	EventIngester  EventIngesterInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → HTTPMetrics → SecurityHeaders → CORS
//	  変更系と /api/fridge-* はさらに Identity → RateLimit(General) → RateLimit(Upload, 画像のみ)
//	  /events/s3 は SharedSecret
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewHTTPMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	followHandler := NewFollowHandler(deps.FollowService)
	profileHandler := NewProfileHandler(deps.ProfileService)
	fridgeHandler := NewFridgeHandler(deps.FridgeService)
	eventHandler := NewEventHandler(deps.EventIngester)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// S3イベント通知
	if deps.EventSecret != "" {
		r.With(middleware.NewSharedSecretMiddleware(deps.EventSecret)).
			Post("/events/s3", eventHandler.HandleS3Event)
	}

	// プロフィール参照
	r.Get("/api/profiles/{userId}", profileHandler.GetProfile)
	r.Get("/api/profiles/{userId}/image", profileHandler.GetImage)

	// エクスプローラー
	r.Route("/api/explore", func(r chi.Router) {
		r.Get("/images", fridgeHandler.ExploreImages)
		r.Get("/users", fridgeHandler.SearchUsers)
	})

	// --- 呼び出し元ユーザーが必要なルート ---
	// ミドルウェアスタック: Identity → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Post("/api/follow", followHandler.Handle)

		r.Post("/api/profiles/resolve", profileHandler.Resolve)
		r.Post("/api/profiles/{userId}", profileHandler.SaveProfile)
		r.Delete("/api/profiles/{userId}", profileHandler.DeleteProfile)
		r.With(deps.RateLimiter.UploadMiddleware()).Put("/api/profiles/{userId}/image", profileHandler.UploadImage)

		r.Route("/api/fridge-images", func(r chi.Router) {
			r.With(deps.RateLimiter.UploadMiddleware()).Post("/", fridgeHandler.Upload)
			r.Get("/", fridgeHandler.History)
		})
		r.Get("/api/fridge-items", fridgeHandler.Items)
	})

	return r
}
