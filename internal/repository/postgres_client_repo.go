package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresClientRepo はPostgreSQLを使用したクライアントリポジトリ。
type PostgresClientRepo struct {
	db *sql.DB
}

// NewPostgresClientRepo はPostgresClientRepoを生成する。
func NewPostgresClientRepo(db *sql.DB) *PostgresClientRepo {
	return &PostgresClientRepo{db: db}
}

// FindByID は指定IDのクライアントを取得する。見つからない場合はnilを返す。
func (r *PostgresClientRepo) FindByID(ctx context.Context, id string) (*model.Client, error) {
	client := &model.Client{}
	var company, contactName, email, phone, status, notes sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, company, contact_name, email, phone, status, notes, created_at, updated_at
		 FROM clients WHERE id = $1`,
		id,
	).Scan(
		&client.ID, &client.Name, &company, &contactName,
		&email, &phone, &status, &notes,
		&client.CreatedAt, &client.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("クライアントの取得に失敗しました: %w", err)
	}

	client.Company = nullStringValue(company)
	client.ContactName = nullStringValue(contactName)
	client.Email = nullStringValue(email)
	client.Phone = nullStringValue(phone)
	client.Status = nullStringValue(status)
	client.Notes = nullStringValue(notes)

	return client, nil
}

// List は全クライアントを作成日時の降順で返す。
func (r *PostgresClientRepo) List(ctx context.Context) ([]*model.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, company, contact_name, email, phone, status, notes, created_at, updated_at
		 FROM clients ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("クライアント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var clients []*model.Client
	for rows.Next() {
		client := &model.Client{}
		var company, contactName, email, phone, status, notes sql.NullString

		if err := rows.Scan(
			&client.ID, &client.Name, &company, &contactName,
			&email, &phone, &status, &notes,
			&client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("クライアント行の読み取りに失敗しました: %w", err)
		}

		client.Company = nullStringValue(company)
		client.ContactName = nullStringValue(contactName)
		client.Email = nullStringValue(email)
		client.Phone = nullStringValue(phone)
		client.Status = nullStringValue(status)
		client.Notes = nullStringValue(notes)

		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("クライアント一覧の走査に失敗しました: %w", err)
	}

	return clients, nil
}

// ListWithUnread は全クライアントを未読メッセージ数・最終メッセージ日時付きで返す。
// 未読数はアーカイブ済みメッセージを含まない。
func (r *PostgresClientRepo) ListWithUnread(ctx context.Context) ([]ClientWithUnread, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.company, c.contact_name, c.email, c.phone, c.status, c.notes,
		        c.created_at, c.updated_at,
		        COUNT(m.id) FILTER (WHERE m.is_read = false AND m.is_archived = false) AS unread_count,
		        MAX(m.created_at) AS last_message_at
		 FROM clients c
		 LEFT JOIN messages m ON m.client_id = c.id
		 GROUP BY c.id
		 ORDER BY c.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("クライアント一覧（未読数付き）の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []ClientWithUnread
	for rows.Next() {
		var cwu ClientWithUnread
		var company, contactName, email, phone, status, notes sql.NullString
		var lastMessageAt sql.NullTime

		if err := rows.Scan(
			&cwu.ID, &cwu.Name, &company, &contactName,
			&email, &phone, &status, &notes,
			&cwu.CreatedAt, &cwu.UpdatedAt,
			&cwu.UnreadCount, &lastMessageAt,
		); err != nil {
			return nil, fmt.Errorf("クライアント行（未読数付き）の読み取りに失敗しました: %w", err)
		}

		cwu.Company = nullStringValue(company)
		cwu.ContactName = nullStringValue(contactName)
		cwu.Email = nullStringValue(email)
		cwu.Phone = nullStringValue(phone)
		cwu.Status = nullStringValue(status)
		cwu.Notes = nullStringValue(notes)
		if lastMessageAt.Valid {
			cwu.LastMessageAt = &lastMessageAt.Time
		}

		results = append(results, cwu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("クライアント一覧（未読数付き）の走査に失敗しました: %w", err)
	}

	return results, nil
}

// Create はクライアントを作成する。
func (r *PostgresClientRepo) Create(ctx context.Context, client *model.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, company, contact_name, email, phone, status, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		client.ID, client.Name, nullString(client.Company), nullString(client.ContactName),
		nullString(client.Email), nullString(client.Phone), nullString(client.Status),
		nullString(client.Notes), client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("クライアントの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はクライアント情報を上書き更新する。履歴は保持しない。
func (r *PostgresClientRepo) Update(ctx context.Context, client *model.Client) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE clients SET
		    name = $2, company = $3, contact_name = $4, email = $5,
		    phone = $6, status = $7, notes = $8, updated_at = $9
		 WHERE id = $1`,
		client.ID, client.Name, nullString(client.Company), nullString(client.ContactName),
		nullString(client.Email), nullString(client.Phone), nullString(client.Status),
		nullString(client.Notes), client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("クライアントの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのクライアントを削除する。
// messages、client_accountsはCASCADE削除される。冪等。
func (r *PostgresClientRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM clients WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("クライアントの削除に失敗しました: %w", err)
	}
	return nil
}

// nullString は空文字列をNULLに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ ClientRepository = (*PostgresClientRepo)(nil)
