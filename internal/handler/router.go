package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	ActorResolver     middleware.ActorResolver
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	CORSAllowedOrigin string

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// エンティティ
	ClientService  ClientServiceInterface
	AccountIssuer  AccountIssuer
	MessageService MessageServiceInterface
	ProjectService ProjectServiceInterface
	WebsiteService WebsiteServiceInterface
	IdeaService    IdeaServiceInterface
	FinanceService FinanceServiceInterface

	// 監視用エンドポイント（/metrics）。nilの場合は公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → CORS
//	（保護ルートのみ）→ Session → CSRF → RateLimit(General)
//
// 認証ルート（/auth/*）とCSRFトークン取得はセッションミドルウェアの外に配置する。
// エンティティCRUDは管理者専用。メッセージルートはポータルセッションも通過でき、
// ハンドラー側で自クライアントのデータに限定される。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	clientHandler := NewClientHandler(deps.ClientService, deps.AccountIssuer)
	messageHandler := NewMessageHandler(deps.MessageService)
	projectHandler := NewProjectHandler(deps.ProjectService)
	websiteHandler := NewWebsiteHandler(deps.WebsiteService)
	ideaHandler := NewIdeaHandler(deps.IdeaService)
	financeHandler := NewFinanceHandler(deps.FinanceService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.LoginAdmin)
		r.Post("/portal/login", authHandler.LoginPortal)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → CSRF → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.ActorResolver))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// メッセージ（管理者・ポータル共用。スコープはハンドラー側で強制）
		r.Route("/api/messages", func(r chi.Router) {
			r.Get("/", messageHandler.List)
			// POST /api/messages - 送信専用レート制限を追加
			r.With(deps.RateLimiter.MessageSendMiddleware()).Post("/", messageHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/flags", messageHandler.SetFlags)
				r.Delete("/", messageHandler.Delete)
			})
		})

		// --- 管理者専用ルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAdminMiddleware())

			r.Route("/api/clients", func(r chi.Router) {
				r.Get("/", clientHandler.List)
				r.Post("/", clientHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", clientHandler.Get)
					r.Put("/", clientHandler.Update)
					r.Delete("/", clientHandler.Delete)

					// POST /api/clients/{id}/accounts - ポータルアカウント発行
					r.Post("/accounts", clientHandler.CreateAccount)
				})
			})

			r.Route("/api/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", projectHandler.Get)
					r.Put("/", projectHandler.Update)
					r.Delete("/", projectHandler.Delete)
				})
			})

			r.Route("/api/websites", func(r chi.Router) {
				r.Get("/", websiteHandler.List)
				r.Post("/", websiteHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", websiteHandler.Get)
					r.Put("/", websiteHandler.Update)
					r.Delete("/", websiteHandler.Delete)
					r.Get("/favicon", websiteHandler.GetFavicon)
				})
			})

			r.Route("/api/ideas", func(r chi.Router) {
				r.Get("/", ideaHandler.List)
				r.Post("/", ideaHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", ideaHandler.Get)
					r.Put("/", ideaHandler.Update)
					r.Delete("/", ideaHandler.Delete)
				})
			})

			r.Route("/api/finances", func(r chi.Router) {
				r.Get("/", financeHandler.List)
				r.Post("/", financeHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", financeHandler.Get)
					r.Put("/", financeHandler.Update)
					r.Delete("/", financeHandler.Delete)
				})
			})
		})
	})

	return r
}
