package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/website"
)

// Checker は個別Webサイトの死活チェックを実行し、結果をDBへ反映する。
type Checker struct {
	websiteRepo repository.WebsiteRepository
	prober      website.ProberService
	logger      *slog.Logger
}

// NewChecker はCheckerの新しいインスタンスを生成する。
func NewChecker(websiteRepo repository.WebsiteRepository, prober website.ProberService, logger *slog.Logger) *Checker {
	return &Checker{
		websiteRepo: websiteRepo,
		prober:      prober,
		logger:      logger,
	}
}

// Check は1サイトをプローブし、チェック状態とメタデータを更新する。
func (c *Checker) Check(ctx context.Context, w *model.Website) error {
	result, err := c.prober.Probe(ctx, w.ID, w.URL)
	if err != nil {
		// 接続不能・SSRFブロック: ステータス0として失敗を記録
		c.logger.Warn("サイトのプローブに失敗しました",
			slog.String("website_id", w.ID),
			slog.String("url", w.URL),
			slog.String("error", err.Error()),
		)
		ApplyFailure(w, 0, 0)
		if updateErr := c.websiteRepo.UpdateCheckState(ctx, w); updateErr != nil {
			return fmt.Errorf("チェック状態の更新に失敗しました: %w", updateErr)
		}
		return nil
	}

	if !IsSuccessStatus(result.HTTPStatus) {
		c.logger.Warn("サイトがエラーステータスを返しました",
			slog.String("website_id", w.ID),
			slog.String("url", w.URL),
			slog.Int("http_status", result.HTTPStatus),
			slog.Int("consecutive_errors", w.ConsecutiveErrors+1),
		)
		ApplyFailure(w, result.HTTPStatus, result.LatencyMs)
		if updateErr := c.websiteRepo.UpdateCheckState(ctx, w); updateErr != nil {
			return fmt.Errorf("チェック状態の更新に失敗しました: %w", updateErr)
		}
		return nil
	}

	ApplySuccess(w, result.HTTPStatus, result.LatencyMs)
	if err := c.websiteRepo.UpdateCheckState(ctx, w); err != nil {
		return fmt.Errorf("チェック状態の更新に失敗しました: %w", err)
	}

	// タイトル・faviconの更新はベストエフォート
	if result.Title != "" || len(result.FaviconData) > 0 {
		if err := c.websiteRepo.UpdateMetadata(ctx, w.ID, result.Title, result.FaviconData, result.FaviconMime); err != nil {
			c.logger.Warn("サイトメタデータの更新に失敗しました",
				slog.String("website_id", w.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	c.logger.Info("サイトチェックが完了しました",
		slog.String("website_id", w.ID),
		slog.String("url", w.URL),
		slog.Int("http_status", result.HTTPStatus),
		slog.Int64("latency_ms", result.LatencyMs),
	)

	return nil
}
