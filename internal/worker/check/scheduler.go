package check

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// WebsiteCheckerService はサイトチェックの実行インターフェース。
type WebsiteCheckerService interface {
	// Check は指定サイトをチェックし、結果に応じてチェック状態を更新する。
	Check(ctx context.Context, w *model.Website) error
}

// Scheduler はサイトチェックのスケジューリングと並列制御を行う。
// 一定間隔のティッカーでチェック対象サイトを取得し、
// semaphoreパターンで最大並列数を制御しながらチェックを実行する。
type Scheduler struct {
	websiteRepo    repository.WebsiteRepository
	checker        WebsiteCheckerService
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値10を使用する。
func NewScheduler(
	websiteRepo repository.WebsiteRepository,
	checker WebsiteCheckerService,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Scheduler{
		websiteRepo:    websiteRepo,
		checker:        checker,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start は指定間隔のティッカーでスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("サイトチェックスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 起動直後に1回実行
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("チェックサイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("サイトチェックスケジューラを停止しました")
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.logger.Error("チェックサイクルの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// RunOnce はチェック対象サイトを1回取得し、並列でチェックを実行する。
// semaphoreパターンで最大並列数を制御する。
func (s *Scheduler) RunOnce(ctx context.Context) error {
	start := time.Now()

	// チェック対象サイトを取得（FOR UPDATE SKIP LOCKED）
	websites, err := s.websiteRepo.ListDueForCheck(ctx)
	if err != nil {
		return err
	}

	if len(websites) == 0 {
		return nil
	}

	s.logger.Info("チェックサイクルを開始します",
		slog.Int("website_count", len(websites)),
	)

	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, site := range websites {
		wg.Add(1)
		sem <- struct{}{} // semaphore取得（ブロック）

		go func(w *model.Website) {
			defer wg.Done()
			defer func() { <-sem }() // semaphore解放

			if err := s.checker.Check(ctx, w); err != nil {
				s.logger.Error("サイトチェックに失敗しました",
					slog.String("website_id", w.ID),
					slog.String("url", w.URL),
					slog.String("error", err.Error()),
				)
			}
		}(site)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("チェックサイクルが完了しました",
		slog.Int("website_count", len(websites)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
