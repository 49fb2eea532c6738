// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ワーカーやサービス層から利用する。
type MetricsCollector interface {
	RecordMessageCreated()
	RecordFlagUpdate()
	RecordPollCycle()
	RecordCacheFallback(collection string)
	RecordCheckSuccess(websiteID string)
	RecordCheckFailure(websiteID string, reason string)
	RecordHTTPStatus(statusCode int)
	RecordCheckLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	messagesCreated prometheus.Counter
	flagUpdates     prometheus.Counter
	pollCycles      prometheus.Counter
	cacheFallbacks  *prometheus.CounterVec
	checkSuccess    prometheus.Counter
	checkFail       prometheus.Counter
	httpStatus      *prometheus.CounterVec
	checkLatency    prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		messagesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctus_messages_created_total",
			Help: "作成されたメッセージの合計数",
		}),
		flagUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctus_message_flag_updates_total",
			Help: "既読・アーカイブフラグ更新の合計数",
		}),
		pollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctus_thread_poll_cycles_total",
			Help: "スレッドポーリングの実行回数",
		}),
		cacheFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctus_cache_fallback_total",
			Help: "リモート障害によるローカルフォールバックの回数",
		}, []string{"collection"}),
		checkSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctus_check_success_total",
			Help: "Webサイト死活チェック成功の合計数",
		}),
		checkFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auctus_check_fail_total",
			Help: "Webサイト死活チェック失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auctus_check_http_status_total",
			Help: "死活チェックのHTTPステータスコード別レスポンス数",
		}, []string{"status_code"}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "auctus_check_latency_seconds",
			Help:    "Webサイト死活チェックのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.messagesCreated,
		c.flagUpdates,
		c.pollCycles,
		c.cacheFallbacks,
		c.checkSuccess,
		c.checkFail,
		c.httpStatus,
		c.checkLatency,
	)

	return c
}

// RecordMessageCreated はメッセージ作成を記録する。
func (c *Collector) RecordMessageCreated() {
	c.messagesCreated.Inc()
}

// RecordFlagUpdate はフラグ更新を記録する。
func (c *Collector) RecordFlagUpdate() {
	c.flagUpdates.Inc()
}

// RecordPollCycle はスレッドポーリングの実行を記録する。
func (c *Collector) RecordPollCycle() {
	c.pollCycles.Inc()
}

// RecordCacheFallback はローカルフォールバックの発生を記録する。
func (c *Collector) RecordCacheFallback(collection string) {
	c.cacheFallbacks.WithLabelValues(collection).Inc()
}

// RecordCheckSuccess は死活チェック成功を記録する。
func (c *Collector) RecordCheckSuccess(websiteID string) {
	c.checkSuccess.Inc()
}

// RecordCheckFailure は死活チェック失敗を記録する。
func (c *Collector) RecordCheckFailure(websiteID string, reason string) {
	c.checkFail.Inc()
}

// RecordHTTPStatus は死活チェックのHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCheckLatency は死活チェックのレイテンシを記録する。
func (c *Collector) RecordCheckLatency(duration time.Duration) {
	c.checkLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
