package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresProjectRepo はPostgreSQLを使用した案件リポジトリ。
type PostgresProjectRepo struct {
	db *sql.DB
}

// NewPostgresProjectRepo はPostgresProjectRepoを生成する。
func NewPostgresProjectRepo(db *sql.DB) *PostgresProjectRepo {
	return &PostgresProjectRepo{db: db}
}

func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Project, error) {
	project := &model.Project{}
	var clientID, description, status sql.NullString
	var startDate, dueDate sql.NullTime

	err := scanner.Scan(
		&project.ID, &clientID, &project.Name, &description, &status,
		&project.BudgetCents, &startDate, &dueDate,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		project.ClientID = &clientID.String
	}
	project.Description = nullStringValue(description)
	project.Status = nullStringValue(status)
	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if dueDate.Valid {
		project.DueDate = &dueDate.Time
	}

	return project, nil
}

// FindByID は指定IDの案件を取得する。見つからない場合はnilを返す。
func (r *PostgresProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, name, description, status, budget_cents,
		        start_date, due_date, created_at, updated_at
		 FROM projects WHERE id = $1`,
		id,
	)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("案件の取得に失敗しました: %w", err)
	}

	return project, nil
}

// List は案件一覧を作成日時の降順で返す。
// clientIDが空でない場合はそのクライアントの案件のみを返す。
func (r *PostgresProjectRepo) List(ctx context.Context, clientID string) ([]*model.Project, error) {
	baseQuery := `
		SELECT id, client_id, name, description, status, budget_cents,
		       start_date, due_date, created_at, updated_at
		FROM projects`

	args := []interface{}{}
	if clientID != "" {
		baseQuery += " WHERE client_id = $1"
		args = append(args, clientID)
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("案件一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("案件行の読み取りに失敗しました: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("案件一覧の走査に失敗しました: %w", err)
	}

	return projects, nil
}

// Create は案件を作成する。
func (r *PostgresProjectRepo) Create(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, description, status, budget_cents,
		                       start_date, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		project.ID, project.ClientID, project.Name,
		nullString(project.Description), nullString(project.Status),
		project.BudgetCents, project.StartDate, project.DueDate,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("案件の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は案件情報を上書き更新する。
func (r *PostgresProjectRepo) Update(ctx context.Context, project *model.Project) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET
		    client_id = $2, name = $3, description = $4, status = $5,
		    budget_cents = $6, start_date = $7, due_date = $8, updated_at = $9
		 WHERE id = $1`,
		project.ID, project.ClientID, project.Name,
		nullString(project.Description), nullString(project.Status),
		project.BudgetCents, project.StartDate, project.DueDate,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("案件の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの案件を削除する。冪等。
func (r *PostgresProjectRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("案件の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProjectRepository = (*PostgresProjectRepo)(nil)
