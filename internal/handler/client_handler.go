package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// ClientServiceInterface はクライアントハンドラーが必要とするサービスインターフェース。
type ClientServiceInterface interface {
	List(ctx context.Context) ([]*model.Client, error)
	// ListWithUnread は未読メッセージ数付きの一覧を返す。管理ダッシュボード用。
	ListWithUnread(ctx context.Context) ([]repository.ClientWithUnread, error)
	Get(ctx context.Context, id string) (*model.Client, error)
	Create(ctx context.Context, c *model.Client) (*model.Client, error)
	Update(ctx context.Context, c *model.Client) (*model.Client, error)
	Delete(ctx context.Context, id string) error
}

// AccountIssuer はポータルアカウント発行のためのインターフェース。
// auth.Serviceの部分集合として定義する。
type AccountIssuer interface {
	CreateClientAccount(ctx context.Context, clientID, username, password string) (*model.ClientAccount, error)
}

// ClientHandler はクライアント管理のHTTPハンドラー。管理者専用。
type ClientHandler struct {
	service ClientServiceInterface
	issuer  AccountIssuer
}

// NewClientHandler はClientHandlerを生成する。
func NewClientHandler(service ClientServiceInterface, issuer AccountIssuer) *ClientHandler {
	return &ClientHandler{
		service: service,
		issuer:  issuer,
	}
}

// clientRequest はクライアント作成・更新リクエストのボディ。
type clientRequest struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

// clientResponse はクライアントのAPIレスポンス。
type clientResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Company       string     `json:"company,omitempty"`
	ContactName   string     `json:"contact_name,omitempty"`
	Email         string     `json:"email,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Status        string     `json:"status,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	UnreadCount   *int       `json:"unread_count,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// createAccountRequest はポータルアカウント発行リクエストのボディ。
type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// accountResponse はポータルアカウントのAPIレスポンス。パスワードハッシュは含めない。
type accountResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// List はクライアント一覧を返す。
// GET /api/clients
// with_unread=1を指定すると未読メッセージ数付きで返す（ダッシュボード表示用）。
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("with_unread") == "1" {
		clients, err := h.service.ListWithUnread(r.Context())
		if err != nil {
			handleServiceError(w, err)
			return
		}
		resp := make([]clientResponse, 0, len(clients))
		for i := range clients {
			resp = append(resp, toClientWithUnreadResponse(&clients[i]))
		}
		writeJSONResponse(w, http.StatusOK, resp)
		return
	}

	clients, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	resp := make([]clientResponse, 0, len(clients))
	for _, c := range clients {
		resp = append(resp, toClientResponse(c))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// Get はクライアント詳細を返す。
// GET /api/clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toClientResponse(c))
}

// Create はクライアントを作成する。
// POST /api/clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	c, err := h.service.Create(r.Context(), req.toModel(""))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, toClientResponse(c))
}

// Update はクライアント情報を上書き更新する。
// PUT /api/clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	c, err := h.service.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toClientResponse(c))
}

// Delete はクライアントを削除する。冪等。
// DELETE /api/clients/{id}
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateAccount はクライアントのポータルアカウントを発行する。
// POST /api/clients/{id}/accounts
func (h *ClientHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	account, err := h.issuer.CreateClientAccount(r.Context(), chi.URLParam(r, "id"), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, accountResponse{
		ID:        account.ID,
		ClientID:  account.ClientID,
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	})
}

// --- ヘルパー関数 ---

func (req *clientRequest) toModel(id string) *model.Client {
	return &model.Client{
		ID:          id,
		Name:        req.Name,
		Company:     req.Company,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      req.Status,
		Notes:       req.Notes,
	}
}

// toClientResponse はmodel.ClientからAPIレスポンスに変換する。
func toClientResponse(c *model.Client) clientResponse {
	return clientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Company:     c.Company,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Status:      c.Status,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// toClientWithUnreadResponse は未読数付きのAPIレスポンスに変換する。
func toClientWithUnreadResponse(c *repository.ClientWithUnread) clientResponse {
	resp := toClientResponse(&c.Client)
	unread := c.UnreadCount
	resp.UnreadCount = &unread
	resp.LastMessageAt = c.LastMessageAt
	return resp
}
