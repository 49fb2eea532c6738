package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresAdminUserRepo はPostgreSQLを使用した管理者ユーザーリポジトリ。
type PostgresAdminUserRepo struct {
	db *sql.DB
}

// NewPostgresAdminUserRepo はPostgresAdminUserRepoを生成する。
func NewPostgresAdminUserRepo(db *sql.DB) *PostgresAdminUserRepo {
	return &PostgresAdminUserRepo{db: db}
}

// FindByID は指定IDの管理者を取得する。見つからない場合はnilを返す。
func (r *PostgresAdminUserRepo) FindByID(ctx context.Context, id string) (*model.AdminUser, error) {
	admin := &model.AdminUser{}
	var displayName sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, created_at, updated_at
		 FROM admin_users WHERE id = $1`,
		id,
	).Scan(
		&admin.ID, &admin.Username, &displayName,
		&admin.PasswordHash, &admin.CreatedAt, &admin.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("管理者の取得に失敗しました: %w", err)
	}

	admin.DisplayName = nullStringValue(displayName)
	return admin, nil
}

// FindByUsername はユーザー名で管理者を検索する。見つからない場合はnilを返す。
func (r *PostgresAdminUserRepo) FindByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	admin := &model.AdminUser{}
	var displayName sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, password_hash, created_at, updated_at
		 FROM admin_users WHERE username = $1`,
		username,
	).Scan(
		&admin.ID, &admin.Username, &displayName,
		&admin.PasswordHash, &admin.CreatedAt, &admin.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー名による管理者の検索に失敗しました: %w", err)
	}

	admin.DisplayName = nullStringValue(displayName)
	return admin, nil
}

// Create は管理者を作成する。初期セットアップ用。
func (r *PostgresAdminUserRepo) Create(ctx context.Context, admin *model.AdminUser) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, username, display_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		admin.ID, admin.Username, nullString(admin.DisplayName),
		admin.PasswordHash, admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AdminUserRepository = (*PostgresAdminUserRepo)(nil)
