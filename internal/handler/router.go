package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/todoman/internal/metrics"
	"github.com/hitoshi/todoman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder
	MetricsGatherer   prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// ドメインサービス
	AuthService AuthServiceInterface
	UserService UserServiceInterface
	TodoService TodoServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics → (認証ルートのみ) Auth → RateLimit(General)
//
// 公開ルート（ログイン、ユーザー登録、ユーザー一覧・詳細、/health、/metrics）は
// 認証ミドルウェアの外に配置する。ログインには送信元IP単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	todoHandler := NewTodoHandler(deps.TodoService)

	// --- 認証不要のルート ---

	if deps.HealthChecker != nil {
		healthHandler := NewHealthHandler(deps.HealthChecker)
		r.Get("/health", healthHandler.Check)
	}

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/v1", func(r chi.Router) {
		// ログイン（IP単位レート制限付き）
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/auth/token", authHandler.Token)

		// ユーザー登録・公開一覧
		r.Post("/users", userHandler.Create)
		r.Get("/users", userHandler.Search)
		r.Get("/users/{id}", userHandler.Show)

		// --- 認証が必要なルート ---
		// ミドルウェアスタック: Auth → RateLimit(General)
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			// トークン再発行
			r.Post("/auth/refresh", authHandler.Refresh)

			// ユーザー管理
			r.Put("/users/{id}", userHandler.Update)
			r.Delete("/users/{id}", userHandler.Destroy)
			r.Post("/users/password", userHandler.ChangePassword)

			// TODO管理
			r.Route("/todos", func(r chi.Router) {
				r.Get("/", todoHandler.Search)
				r.Post("/", todoHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", todoHandler.Show)
					r.Put("/", todoHandler.Update)
					r.Delete("/", todoHandler.Destroy)
					r.Post("/done", todoHandler.Done)
					r.Post("/undone", todoHandler.Undone)
				})
			})
		})
	})

	return r
}
