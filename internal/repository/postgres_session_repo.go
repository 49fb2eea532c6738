package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
// セッションIDにはトークンのHMAC-SHA256ハッシュが渡される前提で、
// このリポジトリはハッシュ化自体には関与しない。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, actor_kind, actor_id, client_id, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		session.ID, string(session.ActorKind), session.ActorID,
		nullString(session.ClientID), session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("セッションの作成に失敗しました: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。
// 期限切れまたは未登録の場合はnilを返す。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session := &model.Session{}
	var actorKind string
	var clientID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, actor_kind, actor_id, client_id, expires_at, created_at
		 FROM sessions WHERE id = $1 AND expires_at > now()`,
		id,
	).Scan(
		&session.ID, &actorKind, &session.ActorID,
		&clientID, &session.ExpiresAt, &session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("セッションの取得に失敗しました: %w", err)
	}

	session.ActorKind = model.ActorKind(actorKind)
	session.ClientID = nullStringValue(clientID)

	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。冪等。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByActorID は指定主体の全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByActorID(ctx context.Context, actorID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE actor_id = $1`,
		actorID,
	)
	if err != nil {
		return fmt.Errorf("主体のセッション削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
