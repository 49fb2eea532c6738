package thread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// MessageStore はスレッドコントローラが利用するメッセージストアの境界。
// 実体はHTTP経由のAPIStoreでも、プロセス内のサービス層アダプタでもよい。
type MessageStore interface {
	// ListMessages はメッセージ一覧を返す。clientIDが空の場合は全件。
	ListMessages(ctx context.Context, clientID string) ([]model.Message, error)
	// CreateMessage は新規メッセージを未読・非アーカイブ状態で作成する。
	CreateMessage(ctx context.Context, clientID, subject, body, author string) (*model.Message, error)
	// SetMessageFlags は既読・アーカイブフラグを部分更新する。
	// 対象が存在しない場合は(nil, nil)を返す（no-op成功）。
	SetMessageFlags(ctx context.Context, id string, isRead, isArchived *bool) (*model.Message, error)
	// DeleteMessage は指定IDのメッセージを削除する（冪等）。
	DeleteMessage(ctx context.Context, id string) error
}

// messagePayload はメッセージAPIのワイヤ表現。
type messagePayload struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	AuthorRole *string   `json:"author_role,omitempty"`
	IsRead     bool      `json:"is_read"`
	IsArchived bool      `json:"is_archived"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p messagePayload) toModel() model.Message {
	return model.Message{
		ID:         p.ID,
		ClientID:   p.ClientID,
		Subject:    p.Subject,
		Body:       p.Body,
		Author:     p.Author,
		AuthorRole: p.AuthorRole,
		IsRead:     p.IsRead,
		IsArchived: p.IsArchived,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// createMessageRequest はメッセージ作成APIのリクエストボディ。
type createMessageRequest struct {
	ClientID string `json:"client_id"`
	Subject  string `json:"subject,omitempty"`
	Body     string `json:"body"`
	Author   string `json:"author"`
}

// setFlagsRequest はフラグ更新APIのリクエストボディ。nilのフィールドは変更しない。
type setFlagsRequest struct {
	IsRead     *bool `json:"is_read,omitempty"`
	IsArchived *bool `json:"is_archived,omitempty"`
}

// APIStore はメッセージAPIをHTTP経由で呼び出すMessageStore実装。
type APIStore struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

var _ MessageStore = (*APIStore)(nil)

// NewAPIStore はAPIStoreの新しいインスタンスを生成する。
// baseURLは末尾スラッシュなしのオリジン（例: https://app.example.com）。
func NewAPIStore(httpClient *http.Client, logger *slog.Logger, baseURL string) *APIStore {
	return &APIStore{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
	}
}

// ListMessages はメッセージ一覧を取得する。
func (s *APIStore) ListMessages(ctx context.Context, clientID string) ([]model.Message, error) {
	reqURL := s.baseURL + "/api/messages"
	if clientID != "" {
		reqURL += "?client_id=" + url.QueryEscape(clientID)
	}

	body, err := s.do(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var payloads []messagePayload
	if err := json.Unmarshal(body, &payloads); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	messages := make([]model.Message, 0, len(payloads))
	for _, p := range payloads {
		messages = append(messages, p.toModel())
	}
	return messages, nil
}

// CreateMessage は新規メッセージを作成する。
func (s *APIStore) CreateMessage(ctx context.Context, clientID, subject, body, author string) (*model.Message, error) {
	reqBody, err := json.Marshal(createMessageRequest{
		ClientID: clientID,
		Subject:  subject,
		Body:     body,
		Author:   author,
	})
	if err != nil {
		return nil, fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	respBody, err := s.do(ctx, http.MethodPost, s.baseURL+"/api/messages", reqBody)
	if err != nil {
		return nil, err
	}

	var payload messagePayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	msg := payload.toModel()
	return &msg, nil
}

// SetMessageFlags は既読・アーカイブフラグを部分更新する。
// サーバーが204を返した場合は対象不在のno-opとして(nil, nil)を返す。
func (s *APIStore) SetMessageFlags(ctx context.Context, id string, isRead, isArchived *bool) (*model.Message, error) {
	reqBody, err := json.Marshal(setFlagsRequest{IsRead: isRead, IsArchived: isArchived})
	if err != nil {
		return nil, fmt.Errorf("リクエストJSONの生成に失敗しました: %w", err)
	}

	respBody, err := s.do(ctx, http.MethodPatch, s.baseURL+"/api/messages/"+url.PathEscape(id)+"/flags", reqBody)
	if err != nil {
		return nil, err
	}
	if len(respBody) == 0 {
		return nil, nil
	}

	var payload messagePayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}
	msg := payload.toModel()
	return &msg, nil
}

// DeleteMessage は指定IDのメッセージを削除する。
func (s *APIStore) DeleteMessage(ctx context.Context, id string) error {
	_, err := s.do(ctx, http.MethodDelete, s.baseURL+"/api/messages/"+url.PathEscape(id), nil)
	return err
}

// do はHTTPリクエストを実行し、2xx応答のボディを返す。
func (s *APIStore) do(ctx context.Context, method, reqURL string, reqBody []byte) ([]byte, error) {
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
	req.Header.Set("User-Agent", "Auctus/1.0 Thread Client")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("メッセージAPIの呼び出しに失敗しました",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.logger.Error("メッセージAPIがエラーステータスを返しました",
			slog.String("method", method),
			slog.String("url", reqURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("メッセージAPIがステータス %d を返しました", resp.StatusCode)
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
