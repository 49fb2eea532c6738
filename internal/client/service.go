// Package client はクライアント管理のドメインロジックを提供する。
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// Service はクライアント管理のサービス層。
type Service struct {
	clientRepo repository.ClientRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(clientRepo repository.ClientRepository) *Service {
	return &Service{clientRepo: clientRepo}
}

// List は全クライアントを作成日時の降順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("クライアント一覧の取得に失敗しました: %w", err)
	}
	return clients, nil
}

// ListWithUnread は全クライアントを未読メッセージ数・最終メッセージ日時付きで返す。
// 管理画面のダッシュボード表示用。
func (s *Service) ListWithUnread(ctx context.Context) ([]repository.ClientWithUnread, error) {
	clients, err := s.clientRepo.ListWithUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("クライアント一覧の取得に失敗しました: %w", err)
	}
	return clients, nil
}

// Get は指定IDのクライアントを取得する。
// 存在しない場合はCLIENT_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("クライアントの取得に失敗しました: %w", err)
	}
	if client == nil {
		return nil, model.NewClientNotFoundError(id)
	}
	return client, nil
}

// Create は新規クライアントを作成する。名前は必須。
func (s *Service) Create(ctx context.Context, c *model.Client) (*model.Client, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}

	now := time.Now()
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.clientRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("クライアントの作成に失敗しました: %w", err)
	}

	return c, nil
}

// Update はクライアント情報を上書き更新する。
// 作成日時は既存の値を維持する。存在しない場合はCLIENT_NOT_FOUNDエラーを返す。
func (s *Service) Update(ctx context.Context, c *model.Client) (*model.Client, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, model.NewEmptyRequiredFieldError("name")
	}

	existing, err := s.clientRepo.FindByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("クライアントの取得に失敗しました: %w", err)
	}
	if existing == nil {
		return nil, model.NewClientNotFoundError(c.ID)
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("クライアントの更新に失敗しました: %w", err)
	}

	return c, nil
}

// Delete は指定IDのクライアントを削除する。
// 関連するメッセージ・ポータルアカウント・セッションはDB側でCASCADE削除され、
// 案件・Webサイト・収支レコードのclient_id参照はNULLに戻る。
// 存在しないIDの削除もエラーにならない（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("クライアントの削除に失敗しました: %w", err)
	}
	return nil
}
