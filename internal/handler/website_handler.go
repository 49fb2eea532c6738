package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// WebsiteServiceInterface はWebサイトハンドラーが必要とするサービスインターフェース。
type WebsiteServiceInterface interface {
	List(ctx context.Context, clientID string) ([]*model.Website, error)
	Get(ctx context.Context, id string) (*model.Website, error)
	Create(ctx context.Context, w *model.Website) (*model.Website, error)
	Update(ctx context.Context, w *model.Website) (*model.Website, error)
	Delete(ctx context.Context, id string) error
}

// WebsiteHandler はWebサイト管理のHTTPハンドラー。管理者専用。
type WebsiteHandler struct {
	service WebsiteServiceInterface
}

// NewWebsiteHandler はWebsiteHandlerを生成する。
func NewWebsiteHandler(service WebsiteServiceInterface) *WebsiteHandler {
	return &WebsiteHandler{service: service}
}

// websiteRequest はWebサイト作成・更新リクエストのボディ。
type websiteRequest struct {
	ClientID *string `json:"client_id"`
	Name     string  `json:"name"`
	URL      string  `json:"url"`
}

// websiteResponse はWebサイトのAPIレスポンス。
// favicon本体はバイナリのため専用エンドポイントで配信し、ここにはMIMEのみ含める。
type websiteResponse struct {
	ID                string     `json:"id"`
	ClientID          *string    `json:"client_id,omitempty"`
	Name              string     `json:"name"`
	URL               string     `json:"url"`
	Title             string     `json:"title,omitempty"`
	FaviconMime       string     `json:"favicon_mime,omitempty"`
	CheckStatus       string     `json:"check_status"`
	ConsecutiveErrors int        `json:"consecutive_errors"`
	LastHTTPStatus    int        `json:"last_http_status,omitempty"`
	LastLatencyMs     int64      `json:"last_latency_ms,omitempty"`
	LastCheckedAt     *time.Time `json:"last_checked_at,omitempty"`
	NextCheckAt       time.Time  `json:"next_check_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// List はWebサイト一覧を返す。
// GET /api/websites?client_id=xxx
func (h *WebsiteHandler) List(w http.ResponseWriter, r *http.Request) {
	websites, err := h.service.List(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]websiteResponse, 0, len(websites))
	for _, site := range websites {
		resp = append(resp, toWebsiteResponse(site))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// Get はWebサイト詳細を返す。
// GET /api/websites/{id}
func (h *WebsiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toWebsiteResponse(site))
}

// GetFavicon はプローブが取得したfaviconを配信する。
// GET /api/websites/{id}/favicon
// 未取得の場合は404を返す。
func (h *WebsiteHandler) GetFavicon(w http.ResponseWriter, r *http.Request) {
	site, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(site.FaviconData) == 0 {
		http.NotFound(w, r)
		return
	}

	mime := site.FaviconMime
	if mime == "" {
		mime = "image/x-icon"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(site.FaviconData)
}

// Create はWebサイトを登録する。
// POST /api/websites
func (h *WebsiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req websiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	site, err := h.service.Create(r.Context(), req.toModel(""))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, toWebsiteResponse(site))
}

// Update はWebサイト情報を上書き更新する。
// PUT /api/websites/{id}
func (h *WebsiteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req websiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	site, err := h.service.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toWebsiteResponse(site))
}

// Delete はWebサイトを削除する。冪等。
// DELETE /api/websites/{id}
func (h *WebsiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

func (req *websiteRequest) toModel(id string) *model.Website {
	return &model.Website{
		ID:       id,
		ClientID: req.ClientID,
		Name:     req.Name,
		URL:      req.URL,
	}
}

// toWebsiteResponse はmodel.WebsiteからAPIレスポンスに変換する。
func toWebsiteResponse(site *model.Website) websiteResponse {
	return websiteResponse{
		ID:                site.ID,
		ClientID:          site.ClientID,
		Name:              site.Name,
		URL:               site.URL,
		Title:             site.Title,
		FaviconMime:       site.FaviconMime,
		CheckStatus:       string(site.CheckStatus),
		ConsecutiveErrors: site.ConsecutiveErrors,
		LastHTTPStatus:    site.LastHTTPStatus,
		LastLatencyMs:     site.LastLatencyMs,
		LastCheckedAt:     site.LastCheckedAt,
		NextCheckAt:       site.NextCheckAt,
		CreatedAt:         site.CreatedAt,
		UpdatedAt:         site.UpdatedAt,
	}
}
