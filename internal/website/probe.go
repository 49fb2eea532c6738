package website

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/metrics"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/security"
)

const (
	// probeTimeout は1サイトのプローブのタイムアウト。
	probeTimeout = 10 * time.Second
	// maxBodySize はタイトル抽出のために読み込むHTMLの最大サイズ（1MB）。
	maxBodySize = 1 * 1024 * 1024
	// maxFaviconSize はfaviconの最大サイズ（2MB）。
	maxFaviconSize = 2 * 1024 * 1024
)

// ProbeResult は1回のプローブの結果。
type ProbeResult struct {
	HTTPStatus  int
	LatencyMs   int64
	Title       string
	FaviconData []byte
	FaviconMime string
}

// ProberService はWebサイトプローブのインターフェース。
type ProberService interface {
	// Probe は指定URLへアクセスし、ステータス・レイテンシ・タイトル・faviconを取得する。
	// 接続失敗やSSRFブロックはエラーを返す。
	Probe(ctx context.Context, websiteID, siteURL string) (*ProbeResult, error)
}

// Prober はSSRF防止付きHTTPクライアントでWebサイトを検査する。
type Prober struct {
	ssrfGuard security.SSRFGuardService
	logger    *slog.Logger
	metrics   metrics.MetricsCollector
}

var _ ProberService = (*Prober)(nil)

// NewProber はProberの新しいインスタンスを生成する。collectorはnilを許容する。
func NewProber(ssrfGuard security.SSRFGuardService, logger *slog.Logger, collector metrics.MetricsCollector) *Prober {
	return &Prober{
		ssrfGuard: ssrfGuard,
		logger:    logger,
		metrics:   collector,
	}
}

// Probe は指定URLへアクセスし、ステータス・レイテンシ・タイトル・faviconを取得する。
// タイトル・faviconの取得失敗はプローブ全体の失敗にはしない（空のまま返す）。
func (p *Prober) Probe(ctx context.Context, websiteID, siteURL string) (*ProbeResult, error) {
	if err := p.ssrfGuard.ValidateURL(siteURL); err != nil {
		p.recordFailure(websiteID, "ssrf_blocked")
		return nil, fmt.Errorf("URLの検証に失敗しました: %w", err)
	}

	client := p.ssrfGuard.NewSafeClient(probeTimeout, maxBodySize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		p.recordFailure(websiteID, "bad_request")
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Auctus/1.0 Site Monitor")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		p.recordFailure(websiteID, "connection_error")
		return nil, fmt.Errorf("サイトへの接続に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	result := &ProbeResult{
		HTTPStatus: resp.StatusCode,
		LatencyMs:  latency.Milliseconds(),
	}

	if p.metrics != nil {
		p.metrics.RecordHTTPStatus(resp.StatusCode)
		p.metrics.RecordCheckLatency(latency)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		p.recordFailure(websiteID, fmt.Sprintf("http_%d", resp.StatusCode))
		// エラーステータスでもレイテンシとステータスは記録対象
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		p.logger.Warn("レスポンスボディの読み取りに失敗しました",
			slog.String("website_id", websiteID),
			slog.String("error", err.Error()),
		)
	} else {
		result.Title = extractTitle(body)
	}

	result.FaviconData, result.FaviconMime = p.fetchFavicon(ctx, client, siteURL)

	if p.metrics != nil {
		p.metrics.RecordCheckSuccess(websiteID)
	}

	return result, nil
}

func (p *Prober) recordFailure(websiteID, reason string) {
	if p.metrics != nil {
		p.metrics.RecordCheckFailure(websiteID, reason)
	}
}

// fetchFavicon は /favicon.ico を取得する。失敗時はnilデータと空MIMEを返す。
func (p *Prober) fetchFavicon(ctx context.Context, client *http.Client, siteURL string) ([]byte, string) {
	faviconURL := defaultFaviconURL(siteURL)
	if faviconURL == "" {
		return nil, ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, faviconURL, nil)
	if err != nil {
		return nil, ""
	}
	req.Header.Set("User-Agent", "Auctus/1.0 Site Monitor")

	resp, err := client.Do(req)
	if err != nil {
		p.logger.Debug("faviconの取得に失敗しました",
			slog.String("url", faviconURL),
			slog.String("error", err.Error()),
		)
		return nil, ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ""
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFaviconSize+1))
	if err != nil || int64(len(data)) > maxFaviconSize || len(data) == 0 {
		return nil, ""
	}

	mimeType := extractMimeType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ""
	}

	return data, mimeType
}

// defaultFaviconURL はサイトURLから標準のfavicon URLを導出する。
func defaultFaviconURL(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}
	u.Path = "/favicon.ico"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// extractTitle はHTMLから<title>要素のテキストを抽出する。
// 見つからない場合は空文字列を返す。
func extractTitle(body []byte) string {
	tokenizer := html.NewTokenizer(strings.NewReader(string(body)))
	inTitle := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if strings.EqualFold(string(name), "title") {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if strings.EqualFold(string(name), "title") {
				// 空の<title></title>
				return ""
			}
		}
	}
}

// extractMimeType はContent-Typeヘッダーからメディアタイプ部分を取り出す。
func extractMimeType(contentType string) string {
	if contentType == "" {
		return ""
	}
	parts := strings.SplitN(contentType, ";", 2)
	return strings.TrimSpace(strings.ToLower(parts[0]))
}
