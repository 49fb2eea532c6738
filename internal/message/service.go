// Package message はメッセージの保存と配信のドメインロジックを提供する。
//
// メッセージは作成後に本文・件名が編集されることはなく、
// 既読・アーカイブフラグのみが冪等に更新される。
package message

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/metrics"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/security"
)

// Service はメッセージ管理のサービス層。
// 一覧取得、作成、フラグ更新、削除のビジネスロジックを提供する。
type Service struct {
	messageRepo repository.MessageRepository
	clientRepo  repository.ClientRepository
	sanitizer   security.ContentSanitizerService
	metrics     metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorはnilを許容する（メトリクス収集なしで動作する）。
func NewService(
	messageRepo repository.MessageRepository,
	clientRepo repository.ClientRepository,
	sanitizer security.ContentSanitizerService,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		messageRepo: messageRepo,
		clientRepo:  clientRepo,
		sanitizer:   sanitizer,
		metrics:     collector,
	}
}

// List はメッセージ一覧をクライアント表示情報付きで返す。
// clientIDが空の場合は全クライアントのメッセージを返す。
// 並び順は作成日時の降順だが、呼び出し側はこの順序に依存してはならない。
func (s *Service) List(ctx context.Context, clientID string) ([]model.MessageWithClient, error) {
	messages, err := s.messageRepo.List(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	return messages, nil
}

// Get は指定IDのメッセージを取得する。
// 存在しない場合はMESSAGE_NOT_FOUNDエラーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Message, error) {
	msg, err := s.messageRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}
	if msg == nil {
		return nil, model.NewMessageNotFoundError(id)
	}
	return msg, nil
}

// Create は新規メッセージを未読・非アーカイブ状態で作成する。
// 本文が空白のみの場合はEMPTY_MESSAGE_BODY、クライアントが存在しない場合は
// CLIENT_NOT_FOUNDエラーを返す。本文と件名は保存前にサニタイズされる。
func (s *Service) Create(ctx context.Context, clientID, subject, body, author string, authorRole *string) (*model.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, model.NewEmptyMessageBodyError()
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("クライアントの取得に失敗しました: %w", err)
	}
	if client == nil {
		return nil, model.NewClientNotFoundError(clientID)
	}

	now := time.Now()
	msg := &model.Message{
		ID:         uuid.New().String(),
		ClientID:   clientID,
		Subject:    s.sanitizer.Sanitize(subject),
		Body:       s.sanitizer.Sanitize(body),
		Author:     author,
		AuthorRole: authorRole,
		IsRead:     false,
		IsArchived: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("メッセージの作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMessageCreated()
	}

	return msg, nil
}

// SetReadState は既読・アーカイブフラグを冪等に部分更新する。
// nilフィールドは変更せず、既存の値を維持する。
// アーカイブ指定（isArchived=true）は既読化を強制する。
// 対象が存在しない場合は(nil, nil)を返す（no-op成功）。
func (s *Service) SetReadState(ctx context.Context, id string, isRead, isArchived *bool) (*model.Message, error) {
	// アーカイブは常に既読を伴う
	if isArchived != nil && *isArchived {
		read := true
		isRead = &read
	}

	msg, err := s.messageRepo.UpdateFlags(ctx, id, isRead, isArchived)
	if err != nil {
		return nil, fmt.Errorf("フラグの更新に失敗しました: %w", err)
	}
	if msg == nil {
		// 存在しないメッセージへのフラグ更新はno-op
		return nil, nil
	}

	if s.metrics != nil {
		s.metrics.RecordFlagUpdate()
	}

	return msg, nil
}

// Delete は指定IDのメッセージを完全に削除する。
// 存在しないIDの削除もエラーにならない（冪等）。
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("メッセージの削除に失敗しました: %w", err)
	}
	return nil
}
