// Package project は案件管理のドメインロジックを提供する。
package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// Service は案件管理のサービス層。
type Service struct {
	projectRepo repository.ProjectRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(projectRepo repository.ProjectRepository) *Service {
	return &Service{projectRepo: projectRepo}
}

// List は案件一覧を返す。clientIDが空の場合は全件。
func (s *Service) List(ctx context.Context, clientID string) ([]*model.Project, error) {
	projects, err := s.projectRepo.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("案件一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}

// Get は指定IDの案件を取得する。
// 存在しない場合はPROJECT_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("案件の取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	return project, nil
}

// Create は新規案件を作成する。名前は必須。
func (s *Service) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}

	now := time.Now()
	p.ID = uuid.New().String()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("案件の作成に失敗しました: %w", err)
	}

	return p, nil
}

// Update は案件情報を上書き更新する。
// 作成日時は既存の値を維持する。存在しない場合はPROJECT_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, p *model.Project) (*model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}

	existing, err := s.projectRepo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("案件の取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewProjectNotFoundError(p.ID)
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("案件の更新に失敗しました: %w", err)
	}

	return p, nil
}

// Delete は指定IDの案件を削除する。存在しないIDの削除もエラーにならない（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("案件の削除に失敗しました: %w", err)
	}
	return nil
}
