// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/auth"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/client"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/config"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/database"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/finance"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/handler"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/idea"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/logger"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/message"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/metrics"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/middleware"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/project"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/security"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/website"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/worker/check"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/worker/cleanup"
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// wはログの出力先（通常はos.Stdout）。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み失敗もログに出せるよう先に行う）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheckは軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("初期化に失敗しました: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続・リポジトリ・サービス・ルーターをワイヤリングし、HTTPサーバーを起動する。
// SIGINT/SIGTERMを受信するとグレースフルシャットダウンする。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("データベース接続に失敗しました: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("データベースへの疎通確認に失敗しました: %w", err)
	}
	slog.Info("database connection established")

	// 2. リポジトリ
	clientRepo := repository.NewPostgresClientRepo(db)
	accountRepo := repository.NewPostgresClientAccountRepo(db)
	adminRepo := repository.NewPostgresAdminUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	messageRepo := repository.NewPostgresMessageRepo(db)
	projectRepo := repository.NewPostgresProjectRepo(db)
	websiteRepo := repository.NewPostgresWebsiteRepo(db)
	ideaRepo := repository.NewPostgresIdeaRepo(db)
	financeRepo := repository.NewPostgresFinanceRepo(db)

	// 3. セキュリティ・メトリクス
	ssrfGuard := security.NewSSRFGuard()
	sanitizer := security.NewContentSanitizer()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. ドメインサービス
	authService := auth.NewService(adminRepo, accountRepo, clientRepo, sessionRepo, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
		SessionSecret: cfg.SessionSecret,
	})

	// ADMIN_USERNAME/ADMIN_PASSWORDが両方設定されている場合のみ管理者を初期作成する
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authService.EnsureAdminUser(ctx, cfg.AdminUsername, cfg.AdminDisplayName, cfg.AdminPassword)
		cancel()
		if err != nil {
			return fmt.Errorf("管理者ユーザーの初期化に失敗しました: %w", err)
		}
	}

	clientService := client.NewService(clientRepo)
	messageService := message.NewService(messageRepo, clientRepo, sanitizer, collector)
	projectService := project.NewService(projectRepo)
	websiteService := website.NewService(websiteRepo, ssrfGuard)
	ideaService := idea.NewService(ideaRepo, sanitizer)
	financeService := finance.NewService(financeRepo)

	// 5. レートリミッター（設定値はreq/分なのでreq/秒に換算する）
	rlCfg := middleware.DefaultRateLimiterConfig()
	rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rlCfg.GeneralBurst = cfg.RateLimitGeneral
	rlCfg.MessageSendRate = rate.Limit(float64(cfg.RateLimitMessageSend) / 60.0)
	rlCfg.MessageSendBurst = cfg.RateLimitMessageSend

	rateLimiter := middleware.NewRateLimiter(rlCfg)
	defer rateLimiter.Stop()

	// 6. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:        slog.Default(),
		ActorResolver: authService,
		RateLimiter:   rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ClientService:  clientService,
		AccountIssuer:  authService,
		MessageService: messageService,
		ProjectService: projectService,
		WebsiteService: websiteService,
		IdeaService:    ideaService,
		FinanceService: financeService,

		MetricsHandler: metrics.SetupMetricsRoute(registry),
	})

	// 7. HTTPサーバー起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("サーバーのシャットダウンに失敗しました: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// Webサイト死活チェックのスケジューラをメインgoroutineで、
// 期限切れセッションの日次クリーンアップをバックグラウンドで動かす。
func runWorker(cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("データベース接続に失敗しました: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("データベースへの疎通確認に失敗しました: %w", err)
	}
	slog.Info("database connection established")

	websiteRepo := repository.NewPostgresWebsiteRepo(db)
	ssrfGuard := security.NewSSRFGuard()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	prober := website.NewProber(ssrfGuard, slog.Default(), collector)
	checker := check.NewChecker(websiteRepo, prober, slog.Default())
	scheduler := check.NewScheduler(websiteRepo, checker, slog.Default(), cfg.CheckMaxConcurrent)
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("check_interval", cfg.CheckInterval),
		slog.Int("max_concurrent", cfg.CheckMaxConcurrent),
	)

	go cleanupJob.StartDaily(ctx)

	// スケジューラはctxキャンセルまでブロックする
	scheduler.Start(ctx, cfg.CheckInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("マイグレーションの実行に失敗しました: %w", err)
	}

	slog.Info("database migrations completed")
	return nil
}

// runHealthcheck は/healthエンドポイントへの疎通を確認する。
// distrolessイメージにはcurl等がないため、DockerのHEALTHCHECKから
// このサブコマンドを呼び出す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	httpClient := &http.Client{Timeout: 5 * time.Second}

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("ヘルスチェックに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ヘルスチェックが異常ステータスを返しました: %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はログ出力用にデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***"
	}
	return "***"
}
