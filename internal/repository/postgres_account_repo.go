package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresClientAccountRepo はPostgreSQLを使用したポータルアカウントリポジトリ。
type PostgresClientAccountRepo struct {
	db *sql.DB
}

// NewPostgresClientAccountRepo はPostgresClientAccountRepoを生成する。
func NewPostgresClientAccountRepo(db *sql.DB) *PostgresClientAccountRepo {
	return &PostgresClientAccountRepo{db: db}
}

// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresClientAccountRepo) FindByID(ctx context.Context, id string) (*model.ClientAccount, error) {
	account := &model.ClientAccount{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, username, password_hash, created_at, updated_at
		 FROM client_accounts WHERE id = $1`,
		id,
	).Scan(
		&account.ID, &account.ClientID, &account.Username,
		&account.PasswordHash, &account.CreatedAt, &account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ポータルアカウントの取得に失敗しました: %w", err)
	}

	return account, nil
}

// FindByUsername はユーザー名でアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresClientAccountRepo) FindByUsername(ctx context.Context, username string) (*model.ClientAccount, error) {
	account := &model.ClientAccount{}

	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, username, password_hash, created_at, updated_at
		 FROM client_accounts WHERE username = $1`,
		username,
	).Scan(
		&account.ID, &account.ClientID, &account.Username,
		&account.PasswordHash, &account.CreatedAt, &account.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー名によるポータルアカウントの検索に失敗しました: %w", err)
	}

	return account, nil
}

// Create はアカウントを作成する。
func (r *PostgresClientAccountRepo) Create(ctx context.Context, account *model.ClientAccount) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO client_accounts (id, client_id, username, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.ClientID, account.Username,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ポータルアカウントの作成に失敗しました: %w", err)
	}
	return nil
}

// DeleteByClientID は指定クライアントの全アカウントを削除する。
func (r *PostgresClientAccountRepo) DeleteByClientID(ctx context.Context, clientID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM client_accounts WHERE client_id = $1`,
		clientID,
	)
	if err != nil {
		return fmt.Errorf("クライアントのポータルアカウント削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ClientAccountRepository = (*PostgresClientAccountRepo)(nil)
