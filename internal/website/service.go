// Package website はWebサイト管理のドメインロジックを提供する。
// 登録時のURL検証と、プローブワーカーによるメタデータ取得・死活チェックを含む。
package website

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/security"
)

// defaultCheckInterval は死活チェックの標準間隔。
const defaultCheckInterval = 15 * time.Minute

// Service はWebサイト管理のサービス層。
type Service struct {
	websiteRepo repository.WebsiteRepository
	ssrfGuard   security.SSRFGuardService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(websiteRepo repository.WebsiteRepository, ssrfGuard security.SSRFGuardService) *Service {
	return &Service{
		websiteRepo: websiteRepo,
		ssrfGuard:   ssrfGuard,
	}
}

// List はWebサイト一覧を返す。clientIDが空の場合は全件。
func (s *Service) List(ctx context.Context, clientID string) ([]*model.Website, error) {
	websites, err := s.websiteRepo.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("Webサイト一覧の取得に失敗しました: %w", err)
	}
	return websites, nil
}

// Get は指定IDのWebサイトを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Website, error) {
	website, err := s.websiteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Webサイトの取得に失敗しました: %w", err)
	}
	if website == nil {
		return nil, model.NewWebsiteNotFoundError(id)
	}
	return website, nil
}

// Create は新規Webサイトを登録する。URLはSSRF検証を通過する必要がある。
// 初回チェックは即時に予約される。
func (s *Service) Create(ctx context.Context, w *model.Website) (*model.Website, error) {
	if strings.TrimSpace(w.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}
	if err := s.validateURL(w.URL); err != nil {
		return nil, err
	}

	now := time.Now()
	w.ID = uuid.New().String()
	w.CheckStatus = model.CheckStatusActive
	w.ConsecutiveErrors = 0
	w.NextCheckAt = now
	w.CreatedAt = now
	w.UpdatedAt = now

	if err := s.websiteRepo.Create(ctx, w); err != nil {
		return nil, fmt.Errorf("Webサイトの作成に失敗しました: %w", err)
	}
	return w, nil
}

// Update はWebサイト情報を上書き更新する。URL変更時も再検証する。
func (s *Service) Update(ctx context.Context, w *model.Website) (*model.Website, error) {
	if strings.TrimSpace(w.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}
	if err := s.validateURL(w.URL); err != nil {
		return nil, err
	}

	existing, err := s.websiteRepo.FindByID(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("Webサイトの取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewWebsiteNotFoundError(w.ID)
	}

	w.CreatedAt = existing.CreatedAt
	w.UpdatedAt = time.Now()
	// チェック状態はワーカーが管理する列なので既存値を引き継ぐ
	w.CheckStatus = existing.CheckStatus
	w.ConsecutiveErrors = existing.ConsecutiveErrors
	w.NextCheckAt = existing.NextCheckAt
	w.LastCheckedAt = existing.LastCheckedAt

	if err := s.websiteRepo.Update(ctx, w); err != nil {
		return nil, fmt.Errorf("Webサイトの更新に失敗しました: %w", err)
	}
	return w, nil
}

// Delete は指定IDのWebサイトを削除する。冪等。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.websiteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("Webサイトの削除に失敗しました: %w", err)
	}
	return nil
}

// validateURL は登録URLの形式とSSRF安全性を検証する。
func (s *Service) validateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return model.NewEmptyRequiredFieldError("url")
	}
	if err := s.ssrfGuard.ValidateURL(rawURL); err != nil {
		return model.NewInvalidURLError(err.Error())
	}
	return nil
}
