package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// IdeaServiceInterface はアイデアハンドラーが必要とするサービスインターフェース。
type IdeaServiceInterface interface {
	List(ctx context.Context) ([]*model.Idea, error)
	Get(ctx context.Context, id string) (*model.Idea, error)
	Create(ctx context.Context, i *model.Idea) (*model.Idea, error)
	Update(ctx context.Context, i *model.Idea) (*model.Idea, error)
	Delete(ctx context.Context, id string) error
}

// IdeaHandler はアイデアメモのHTTPハンドラー。管理者専用。
type IdeaHandler struct {
	service IdeaServiceInterface
}

// NewIdeaHandler はIdeaHandlerを生成する。
func NewIdeaHandler(service IdeaServiceInterface) *IdeaHandler {
	return &IdeaHandler{service: service}
}

// ideaRequest はアイデア作成・更新リクエストのボディ。
type ideaRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// ideaResponse はアイデアのAPIレスポンス。
type ideaResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List はアイデア一覧を返す。
// GET /api/ideas
func (h *IdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]ideaResponse, 0, len(ideas))
	for _, i := range ideas {
		resp = append(resp, toIdeaResponse(i))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// Get はアイデア詳細を返す。
// GET /api/ideas/{id}
func (h *IdeaHandler) Get(w http.ResponseWriter, r *http.Request) {
	i, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toIdeaResponse(i))
}

// Create はアイデアを作成する。
// POST /api/ideas
func (h *IdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	i, err := h.service.Create(r.Context(), req.toModel(""))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, toIdeaResponse(i))
}

// Update はアイデアを上書き更新する。
// PUT /api/ideas/{id}
func (h *IdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ideaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	i, err := h.service.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toIdeaResponse(i))
}

// Delete はアイデアを削除する。冪等。
// DELETE /api/ideas/{id}
func (h *IdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

func (req *ideaRequest) toModel(id string) *model.Idea {
	return &model.Idea{
		ID:       id,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
	}
}

// toIdeaResponse はmodel.IdeaからAPIレスポンスに変換する。
func toIdeaResponse(i *model.Idea) ideaResponse {
	return ideaResponse{
		ID:        i.ID,
		Title:     i.Title,
		Body:      i.Body,
		Category:  i.Category,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
	}
}
