package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// FinanceServiceInterface は収支ハンドラーが必要とするサービスインターフェース。
type FinanceServiceInterface interface {
	List(ctx context.Context, clientID string) ([]*model.FinanceRecord, error)
	Get(ctx context.Context, id string) (*model.FinanceRecord, error)
	Create(ctx context.Context, r *model.FinanceRecord) (*model.FinanceRecord, error)
	Update(ctx context.Context, r *model.FinanceRecord) (*model.FinanceRecord, error)
	Delete(ctx context.Context, id string) error
}

// FinanceHandler は収支レコードのHTTPハンドラー。管理者専用。
type FinanceHandler struct {
	service FinanceServiceInterface
}

// NewFinanceHandler はFinanceHandlerを生成する。
func NewFinanceHandler(service FinanceServiceInterface) *FinanceHandler {
	return &FinanceHandler{service: service}
}

// financeRequest は収支レコード作成・更新リクエストのボディ。
type financeRequest struct {
	ClientID    *string    `json:"client_id"`
	Kind        string     `json:"kind"`
	Label       string     `json:"label"`
	AmountCents int64      `json:"amount_cents"`
	OccurredOn  *time.Time `json:"occurred_on"`
	Notes       string     `json:"notes"`
}

// financeResponse は収支レコードのAPIレスポンス。
type financeResponse struct {
	ID          string    `json:"id"`
	ClientID    *string   `json:"client_id,omitempty"`
	Kind        string    `json:"kind"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	OccurredOn  time.Time `json:"occurred_on"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// List は収支レコード一覧を返す。
// GET /api/finances?client_id=xxx
func (h *FinanceHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]financeResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toFinanceResponse(rec))
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

// Get は収支レコード詳細を返す。
// GET /api/finances/{id}
func (h *FinanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toFinanceResponse(rec))
}

// Create は収支レコードを作成する。
// POST /api/finances
func (h *FinanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req financeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	rec, err := h.service.Create(r.Context(), req.toModel(""))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, toFinanceResponse(rec))
}

// Update は収支レコードを上書き更新する。
// PUT /api/finances/{id}
func (h *FinanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req financeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}

	rec, err := h.service.Update(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, toFinanceResponse(rec))
}

// Delete は収支レコードを削除する。冪等。
// DELETE /api/finances/{id}
func (h *FinanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

func (req *financeRequest) toModel(id string) *model.FinanceRecord {
	rec := &model.FinanceRecord{
		ID:          id,
		ClientID:    req.ClientID,
		Kind:        model.FinanceKind(req.Kind),
		Label:       req.Label,
		AmountCents: req.AmountCents,
		Notes:       req.Notes,
	}
	if req.OccurredOn != nil {
		rec.OccurredOn = *req.OccurredOn
	}
	return rec
}

// toFinanceResponse はmodel.FinanceRecordからAPIレスポンスに変換する。
func toFinanceResponse(rec *model.FinanceRecord) financeResponse {
	return financeResponse{
		ID:          rec.ID,
		ClientID:    rec.ClientID,
		Kind:        string(rec.Kind),
		Label:       rec.Label,
		AmountCents: rec.AmountCents,
		OccurredOn:  rec.OccurredOn,
		Notes:       rec.Notes,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}
