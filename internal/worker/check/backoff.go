// Package check はWebサイト死活チェックのバックグラウンド処理を提供する。
// スケジューラ、チェッカー、バックオフ戦略を含む。
package check

import (
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

const (
	// defaultInterval は成功時の次回チェックまでの間隔（15分）。
	defaultInterval = 15 * time.Minute
	// initialBackoff は指数バックオフの初回遅延（30分）。
	initialBackoff = 30 * time.Minute
	// maxBackoff は指数バックオフの最大遅延（12時間）。
	maxBackoff = 12 * time.Hour
	// stopThreshold は連続エラーによるチェック停止の閾値。
	stopThreshold = 10
)

// CalculateBackoff は連続エラー回数に基づいて指数バックオフ遅延を計算する。
// 初回30分、2倍ずつ増加、最大12時間。
func CalculateBackoff(consecutiveErrors int) time.Duration {
	delay := initialBackoff
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// ApplySuccess はチェック成功時にWebサイトの状態をリセットする。
// 連続エラー回数を0にし、次回チェックを標準間隔で予約する。
func ApplySuccess(w *model.Website, httpStatus int, latencyMs int64) {
	now := time.Now()
	w.ConsecutiveErrors = 0
	w.LastHTTPStatus = httpStatus
	w.LastLatencyMs = latencyMs
	w.LastCheckedAt = &now
	w.NextCheckAt = now.Add(defaultInterval)
	w.UpdatedAt = now
}

// ApplyFailure はチェック失敗時にバックオフ戦略を適用する。
// 連続エラー回数をインクリメントし、指数バックオフでnext_check_atを設定する。
// 閾値に達した場合はチェックを停止する。
func ApplyFailure(w *model.Website, httpStatus int, latencyMs int64) {
	now := time.Now()
	w.ConsecutiveErrors++
	w.LastHTTPStatus = httpStatus
	w.LastLatencyMs = latencyMs
	w.LastCheckedAt = &now
	w.NextCheckAt = now.Add(CalculateBackoff(w.ConsecutiveErrors - 1))
	w.UpdatedAt = now

	if w.ConsecutiveErrors >= stopThreshold {
		w.CheckStatus = model.CheckStatusStopped
	}
}

// IsSuccessStatus はHTTPステータスがチェック成功とみなせるかを判定する。
// 2xx/3xxは成功、4xx/5xxと接続不能（0）は失敗。
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 400
}
