package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
func (r *PostgresMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	msg := &model.Message{}
	var subject, author, authorRole sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, subject, body, author, author_role,
		        is_read, is_archived, created_at, updated_at
		 FROM messages WHERE id = $1`,
		id,
	).Scan(
		&msg.ID, &msg.ClientID, &subject, &msg.Body, &author, &authorRole,
		&msg.IsRead, &msg.IsArchived, &msg.CreatedAt, &msg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メッセージの取得に失敗しました: %w", err)
	}

	msg.Subject = nullStringValue(subject)
	msg.Author = nullStringValue(author)
	if authorRole.Valid {
		msg.AuthorRole = &authorRole.String
	}

	return msg, nil
}

// List はメッセージ一覧をクライアント表示情報付きで作成日時の降順で返す。
// clientIDが空の場合は全クライアントのメッセージを返す。
// 並び順は管理画面の一覧表示向けであり、スレッド表示側はこの順序に依存せず昇順に再ソートする。
func (r *PostgresMessageRepo) List(ctx context.Context, clientID string) ([]model.MessageWithClient, error) {
	baseQuery := `
		SELECT m.id, m.client_id, m.subject, m.body, m.author, m.author_role,
		       m.is_read, m.is_archived, m.created_at, m.updated_at,
		       c.name, c.company
		FROM messages m
		JOIN clients c ON m.client_id = c.id`

	args := []interface{}{}
	if clientID != "" {
		baseQuery += " WHERE m.client_id = $1"
		args = append(args, clientID)
	}
	baseQuery += " ORDER BY m.created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("メッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var messages []model.MessageWithClient
	for rows.Next() {
		var mwc model.MessageWithClient
		var subject, author, authorRole, company sql.NullString

		if err := rows.Scan(
			&mwc.ID, &mwc.ClientID, &subject, &mwc.Body, &author, &authorRole,
			&mwc.IsRead, &mwc.IsArchived, &mwc.CreatedAt, &mwc.UpdatedAt,
			&mwc.ClientName, &company,
		); err != nil {
			return nil, fmt.Errorf("メッセージ行の読み取りに失敗しました: %w", err)
		}

		mwc.Subject = nullStringValue(subject)
		mwc.Author = nullStringValue(author)
		mwc.ClientCompany = nullStringValue(company)
		if authorRole.Valid {
			mwc.AuthorRole = &authorRole.String
		}

		messages = append(messages, mwc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("メッセージ一覧の走査に失敗しました: %w", err)
	}

	return messages, nil
}

// Create は新規メッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, msg *model.Message) error {
	var authorRole sql.NullString
	if msg.AuthorRole != nil {
		authorRole = sql.NullString{String: *msg.AuthorRole, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, client_id, subject, body, author, author_role,
		                       is_read, is_archived, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		msg.ID, msg.ClientID, nullString(msg.Subject), msg.Body,
		nullString(msg.Author), authorRole,
		msg.IsRead, msg.IsArchived, msg.CreatedAt, msg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("メッセージの作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateFlags は既読・アーカイブフラグを冪等に部分更新する。
// nilフィールドは変更せず既存の値を維持する。
// 対象が存在しない場合はnilを返す（エラーにしない: レース時のスレッド更新失敗を避ける）。
func (r *PostgresMessageRepo) UpdateFlags(ctx context.Context, id string, isRead *bool, isArchived *bool) (*model.Message, error) {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	now := time.Now().UTC()
	existing.UpdatedAt = now
	if isRead != nil {
		existing.IsRead = *isRead
	}
	if isArchived != nil {
		existing.IsArchived = *isArchived
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = $2, is_archived = $3, updated_at = $4
		 WHERE id = $1`,
		existing.ID, existing.IsRead, existing.IsArchived, existing.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("メッセージフラグの更新に失敗しました: %w", err)
	}

	return existing, nil
}

// Delete は指定IDのメッセージを完全に削除する。
// 存在しないIDの削除はエラーにならない（冪等）。
func (r *PostgresMessageRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("メッセージの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
