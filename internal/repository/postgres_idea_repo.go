package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresIdeaRepo はPostgreSQLを使用したアイデアリポジトリ。
type PostgresIdeaRepo struct {
	db *sql.DB
}

// NewPostgresIdeaRepo はPostgresIdeaRepoを生成する。
func NewPostgresIdeaRepo(db *sql.DB) *PostgresIdeaRepo {
	return &PostgresIdeaRepo{db: db}
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *PostgresIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	idea := &model.Idea{}
	var body, category sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, category, created_at, updated_at
		 FROM ideas WHERE id = $1`,
		id,
	).Scan(
		&idea.ID, &idea.Title, &body, &category,
		&idea.CreatedAt, &idea.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}

	idea.Body = nullStringValue(body)
	idea.Category = nullStringValue(category)

	return idea, nil
}

// List はアイデア一覧を作成日時の降順で返す。
func (r *PostgresIdeaRepo) List(ctx context.Context) ([]*model.Idea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, category, created_at, updated_at
		 FROM ideas ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("アイデア一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var ideas []*model.Idea
	for rows.Next() {
		idea := &model.Idea{}
		var body, category sql.NullString

		if err := rows.Scan(
			&idea.ID, &idea.Title, &body, &category,
			&idea.CreatedAt, &idea.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("アイデア行の読み取りに失敗しました: %w", err)
		}

		idea.Body = nullStringValue(body)
		idea.Category = nullStringValue(category)

		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("アイデア一覧の走査に失敗しました: %w", err)
	}

	return ideas, nil
}

// Create はアイデアを作成する。
func (r *PostgresIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ideas (id, title, body, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		idea.ID, idea.Title, nullString(idea.Body), nullString(idea.Category),
		idea.CreatedAt, idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アイデアの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はアイデアを上書き更新する。
func (r *PostgresIdeaRepo) Update(ctx context.Context, idea *model.Idea) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE ideas SET title = $2, body = $3, category = $4, updated_at = $5
		 WHERE id = $1`,
		idea.ID, idea.Title, nullString(idea.Body), nullString(idea.Category),
		idea.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("アイデアの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのアイデアを削除する。冪等。
func (r *PostgresIdeaRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM ideas WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("アイデアの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ IdeaRepository = (*PostgresIdeaRepo)(nil)
