// Package idea は社内アイデアメモのドメインロジックを提供する。
package idea

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

// Service はアイデア管理のサービス層。
// 本文はメッセージと同じサニタイザーを通して保存する。
type Service struct {
	ideaRepo  repository.IdeaRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(ideaRepo repository.IdeaRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		ideaRepo:  ideaRepo,
		sanitizer: sanitizer,
	}
}

// List はアイデア一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Idea, error) {
	ideas, err := s.ideaRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("アイデア一覧の取得に失敗しました: %w", err)
	}
	return ideas, nil
}

// Get は指定IDのアイデアを取得する。
// 存在しない場合はIDEA_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Idea, error) {
	idea, err := s.ideaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil {
		return nil, model.NewIdeaNotFoundError(id)
	}
	return idea, nil
}

// Create は新規アイデアを作成する。タイトルは必須。本文はサニタイズされる。
func (s *Service) Create(ctx context.Context, i *model.Idea) (*model.Idea, error) {
	if strings.TrimSpace(i.Title) == "" {
		return nil, model.NewEmptyRequiredFieldError("title")
	}

	now := time.Now()
	i.ID = uuid.New().String()
	i.Body = s.sanitizer.Sanitize(i.Body)
	i.CreatedAt = now
	i.UpdatedAt = now

	if err := s.ideaRepo.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("アイデアの作成に失敗しました: %w", err)
	}

	return i, nil
}

// Update はアイデアを上書き更新する。本文は再サニタイズされる。
// 存在しない場合はIDEA_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, i *model.Idea) (*model.Idea, error) {
	if strings.TrimSpace(i.Title) == "" {
		return nil, model.NewEmptyRequiredFieldError("title")
	}

	existing, err := s.ideaRepo.FindByID(ctx, i.ID)
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewIdeaNotFoundError(i.ID)
	}

	i.Body = s.sanitizer.Sanitize(i.Body)
	i.CreatedAt = existing.CreatedAt
	i.UpdatedAt = time.Now()

	if err := s.ideaRepo.Update(ctx, i); err != nil {
		return nil, fmt.Errorf("アイデアの更新に失敗しました: %w", err)
	}

	return i, nil
}

// Delete は指定IDのアイデアを削除する。存在しないIDの削除もエラーにならない（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ideaRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("アイデアの削除に失敗しました: %w", err)
	}
	return nil
}
