package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/middleware"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// MessageServiceInterface はメッセージハンドラーが必要とするサービスインターフェース。
type MessageServiceInterface interface {
	// List はメッセージ一覧をクライアント表示情報付きで返す。clientIDが空の場合は全件。
	List(ctx context.Context, clientID string) ([]model.MessageWithClient, error)
	// Get は指定IDのメッセージを取得する。
	Get(ctx context.Context, id string) (*model.Message, error)
	// Create は新規メッセージを未読・非アーカイブ状態で作成する。
	Create(ctx context.Context, clientID, subject, body, author string, authorRole *string) (*model.Message, error)
	// SetReadState は既読・アーカイブフラグを冪等に部分更新する。
	// 対象が存在しない場合は(nil, nil)を返す。
	SetReadState(ctx context.Context, id string, isRead, isArchived *bool) (*model.Message, error)
	// Delete は指定IDのメッセージを完全に削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// MessageHandler はメッセージ管理のHTTPハンドラー。
// 管理者とクライアントポータルの両方から利用され、
// ポータルのリクエストは自クライアントのデータに限定される。
type MessageHandler struct {
	service MessageServiceInterface
}

// NewMessageHandler はMessageHandlerを生成する。
func NewMessageHandler(service MessageServiceInterface) *MessageHandler {
	return &MessageHandler{service: service}
}

// createMessageRequest はメッセージ作成リクエストのボディ。
type createMessageRequest struct {
	ClientID string `json:"client_id"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Author   string `json:"author"`
}

// setFlagsRequest はフラグ更新リクエストのボディ。nilのフィールドは変更しない。
type setFlagsRequest struct {
	IsRead     *bool `json:"is_read"`
	IsArchived *bool `json:"is_archived"`
}

// messageResponse はメッセージのAPIレスポンス。
type messageResponse struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	Subject       string    `json:"subject,omitempty"`
	Body          string    `json:"body"`
	Author        string    `json:"author"`
	AuthorRole    *string   `json:"author_role,omitempty"`
	IsRead        bool      `json:"is_read"`
	IsArchived    bool      `json:"is_archived"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ClientName    string    `json:"client_name,omitempty"`
	ClientCompany string    `json:"client_company,omitempty"`
}

// List はメッセージ一覧を返す。
// GET /api/messages?client_id=xxx
// ポータルセッションの場合はclient_idクエリに関わらず自クライアントに限定される。
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if actor.Kind == model.ActorKindClient {
		clientID = actor.ClientID
	}

	messages, err := h.service.List(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for i := range messages {
		resp = append(resp, toMessageWithClientResponse(&messages[i]))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// Create はメッセージを作成する。
// POST /api/messages
// ポータルセッションの場合はclient_idと送信者ラベルが自アカウントに固定される。
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	clientID := req.ClientID
	author := req.Author
	if author == "" {
		author = actor.DisplayName
	}

	var role model.AuthorRole
	switch actor.Kind {
	case model.ActorKindClient:
		clientID = actor.ClientID
		author = actor.DisplayName
		role = model.AuthorRoleClient
	default:
		role = model.AuthorRoleAdmin
	}
	roleStr := string(role)

	msg, err := h.service.Create(r.Context(), clientID, req.Subject, req.Body, author, &roleStr)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toMessageResponse(msg))
}

// SetFlags は既読・アーカイブフラグを部分更新する。
// PATCH /api/messages/{id}/flags
// 対象が存在しない場合は204を返す（no-op成功）。
func (h *MessageHandler) SetFlags(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	messageID := chi.URLParam(r, "id")

	var req setFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	// ポータルセッションは自クライアントのメッセージのみ更新できる
	if actor.Kind == model.ActorKindClient {
		if ok := h.authorizePortalMessage(w, r, actor.ClientID, messageID); !ok {
			return
		}
	}

	msg, err := h.service.SetReadState(r.Context(), messageID, req.IsRead, req.IsArchived)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if msg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSONResponse(w, http.StatusOK, toMessageResponse(msg))
}

// Delete はメッセージを完全に削除する。管理者専用。冪等。
// DELETE /api/messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}
	if actor.Kind != model.ActorKindAdmin {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenClientDataError())
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizePortalMessage はポータルセッションが対象メッセージを操作できるか検証する。
// 対象が存在しない場合は204を書き込みfalseを返す（フラグ更新のno-op仕様に合わせる）。
// 他クライアントのメッセージの場合は403を書き込む。
func (h *MessageHandler) authorizePortalMessage(w http.ResponseWriter, r *http.Request, clientID, messageID string) bool {
	msg, err := h.service.Get(r.Context(), messageID)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeMessageNotFound {
			w.WriteHeader(http.StatusNoContent)
			return false
		}
		handleServiceError(w, err)
		return false
	}
	if msg.ClientID != clientID {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewForbiddenClientDataError())
		return false
	}
	return true
}

// --- ヘルパー関数 ---

// toMessageResponse はmodel.MessageからAPIレスポンスに変換する。
func toMessageResponse(msg *model.Message) messageResponse {
	return messageResponse{
		ID:         msg.ID,
		ClientID:   msg.ClientID,
		Subject:    msg.Subject,
		Body:       msg.Body,
		Author:     msg.Author,
		AuthorRole: msg.AuthorRole,
		IsRead:     msg.IsRead,
		IsArchived: msg.IsArchived,
		CreatedAt:  msg.CreatedAt,
		UpdatedAt:  msg.UpdatedAt,
	}
}

// toMessageWithClientResponse はクライアント表示情報付きのAPIレスポンスに変換する。
func toMessageWithClientResponse(msg *model.MessageWithClient) messageResponse {
	resp := toMessageResponse(&msg.Message)
	resp.ClientName = msg.ClientName
	resp.ClientCompany = msg.ClientCompany
	return resp
}
