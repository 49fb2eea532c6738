package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Remote はコレクションAPIのリモート境界。
type Remote interface {
	// Get はコレクションの全レコードを取得する。
	Get(ctx context.Context, collection string) ([]Record, error)
	// Add は新規レコードを作成し、サーバーが確定させたレコードを返す。
	Add(ctx context.Context, collection string, rec Record) (Record, error)
	// Update は既存レコードを上書きし、更新後のレコードを返す。
	Update(ctx context.Context, collection string, rec Record) (Record, error)
	// Delete は指定idのレコードを削除する。
	Delete(ctx context.Context, collection, id string) error
}

// APIRemote はコレクションAPIをHTTP経由で呼び出すRemote実装。
type APIRemote struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

var _ Remote = (*APIRemote)(nil)

// NewAPIRemote はAPIRemoteの新しいインスタンスを生成する。
func NewAPIRemote(httpClient *http.Client, logger *slog.Logger, baseURL string) *APIRemote {
	return &APIRemote{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// Get はコレクションの全レコードを取得する。
func (r *APIRemote) Get(ctx context.Context, collection string) ([]Record, error) {
	body, err := r.do(ctx, http.MethodGet, r.collectionURL(collection), nil)
	if err != nil {
		return nil, err
	}

	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return records, nil
}

// Add は新規レコードを作成する。
func (r *APIRemote) Add(ctx context.Context, collection string, rec Record) (Record, error) {
	return r.send(ctx, http.MethodPost, r.collectionURL(collection), rec)
}

// Update は既存レコードを上書きする。
func (r *APIRemote) Update(ctx context.Context, collection string, rec Record) (Record, error) {
	id := rec.ID()
	if id == "" {
		return nil, fmt.Errorf("レコードにidがありません: collection=%s", collection)
	}
	return r.send(ctx, http.MethodPut, r.collectionURL(collection)+"/"+url.PathEscape(id), rec)
}

// Delete は指定idのレコードを削除する。
func (r *APIRemote) Delete(ctx context.Context, collection, id string) error {
	_, err := r.do(ctx, http.MethodDelete, r.collectionURL(collection)+"/"+url.PathEscape(id), nil)
	return err
}

func (r *APIRemote) collectionURL(collection string) string {
	return r.baseURL + "/api/" + url.PathEscape(collection)
}

// send はレコードをJSONボディとして送信し、レスポンスのレコードを返す。
func (r *APIRemote) send(ctx context.Context, method, reqURL string, rec Record) (Record, error) {
	reqBody, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	respBody, err := r.do(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		// ボディなし応答の場合は送信したレコードをそのまま正とする
		return rec, nil
	}

	var result Record
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	return result, nil
}

// do はHTTPリクエストを実行し、2xx応答のボディを返す。
func (r *APIRemote) do(ctx context.Context, method, reqURL string, reqBody []byte) ([]byte, error) {
	var reader io.Reader
	if reqBody != nil {
		reader = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "Auctus/1.0 Sync Client")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.logger.Warn("コレクションAPIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		r.logger.Warn("コレクションAPIがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("コレクションAPIがステータス %d を返しました", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	return body, nil
}
