// Package finance は収支レコード管理のドメインロジックを提供する。
package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// Service は収支レコード管理のサービス層。
type Service struct {
	financeRepo repository.FinanceRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(financeRepo repository.FinanceRepository) *Service {
	return &Service{financeRepo: financeRepo}
}

// List は収支レコード一覧を発生日の降順で返す。clientIDが空の場合は全件。
func (s *Service) List(ctx context.Context, clientID string) ([]*model.FinanceRecord, error) {
	records, err := s.financeRepo.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("収支レコード一覧の取得に失敗しました: %w", err)
	}
	return records, nil
}

// Get は指定IDの収支レコードを取得する。
// 存在しない場合はFINANCE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.FinanceRecord, error) {
	record, err := s.financeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("収支レコードの取得に失敗しました: %w", err)
	}
	if record == nil {
		return nil, model.NewFinanceNotFoundError(id)
	}
	return record, nil
}

// Create は新規収支レコードを作成する。ラベルと有効な種別は必須。
// 発生日が未設定の場合は当日が使われる。
func (s *Service) Create(ctx context.Context, r *model.FinanceRecord) (*model.FinanceRecord, error) {
	if err := validateRecord(r); err != nil {
		return nil, err
	}

	now := time.Now()
	r.ID = uuid.New().String()
	if r.OccurredOn.IsZero() {
		r.OccurredOn = now
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	if err := s.financeRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("収支レコードの作成に失敗しました: %w", err)
	}

	return r, nil
}

// Update は収支レコードを上書き更新する。
// 作成日時は既存の値を維持する。存在しない場合はFINANCE_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, r *model.FinanceRecord) (*model.FinanceRecord, error) {
	if err := validateRecord(r); err != nil {
		return nil, err
	}

	existing, err := s.financeRepo.FindByID(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("収支レコードの取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewFinanceNotFoundError(r.ID)
	}

	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now()

	if err := s.financeRepo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("収支レコードの更新に失敗しました: %w", err)
	}

	return r, nil
}

// Delete は指定IDの収支レコードを削除する。存在しないIDの削除もエラーにならない（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.financeRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("収支レコードの削除に失敗しました: %w", err)
	}
	return nil
}

// validateRecord はラベルと種別の妥当性を検証する。
func validateRecord(r *model.FinanceRecord) error {
	if strings.TrimSpace(r.Label) == "" {
		return model.NewEmptyRequiredFieldError("label")
	}
	switch r.Kind {
	case model.FinanceKindIncome, model.FinanceKindExpense:
		return nil
	default:
		return model.NewInvalidFinanceKindError(string(r.Kind))
	}
}
