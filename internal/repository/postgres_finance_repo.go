package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresFinanceRepo はPostgreSQLを使用した収支レコードリポジトリ。
type PostgresFinanceRepo struct {
	db *sql.DB
}

// NewPostgresFinanceRepo はPostgresFinanceRepoを生成する。
func NewPostgresFinanceRepo(db *sql.DB) *PostgresFinanceRepo {
	return &PostgresFinanceRepo{db: db}
}

func scanFinanceRecord(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.FinanceRecord, error) {
	record := &model.FinanceRecord{}
	var clientID, notes sql.NullString
	var kind string

	err := scanner.Scan(
		&record.ID, &clientID, &kind, &record.Label,
		&record.AmountCents, &record.OccurredOn, &notes,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		record.ClientID = &clientID.String
	}
	record.Kind = model.FinanceKind(kind)
	record.Notes = nullStringValue(notes)

	return record, nil
}

// FindByID は指定IDの収支レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresFinanceRepo) FindByID(ctx context.Context, id string) (*model.FinanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, kind, label, amount_cents, occurred_on, notes, created_at, updated_at
		 FROM finance_records WHERE id = $1`,
		id,
	)

	record, err := scanFinanceRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("収支レコードの取得に失敗しました: %w", err)
	}

	return record, nil
}

// List は収支レコード一覧を発生日の降順で返す。
// clientIDが空でない場合はそのクライアントのレコードのみを返す。
func (r *PostgresFinanceRepo) List(ctx context.Context, clientID string) ([]*model.FinanceRecord, error) {
	baseQuery := `
		SELECT id, client_id, kind, label, amount_cents, occurred_on, notes, created_at, updated_at
		FROM finance_records`

	args := []interface{}{}
	if clientID != "" {
		baseQuery += " WHERE client_id = $1"
		args = append(args, clientID)
	}
	baseQuery += " ORDER BY occurred_on DESC, created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("収支レコード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var records []*model.FinanceRecord
	for rows.Next() {
		record, err := scanFinanceRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("収支レコード行の読み取りに失敗しました: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("収支レコード一覧の走査に失敗しました: %w", err)
	}

	return records, nil
}

// Create は収支レコードを作成する。
func (r *PostgresFinanceRepo) Create(ctx context.Context, record *model.FinanceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO finance_records (id, client_id, kind, label, amount_cents, occurred_on, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.ClientID, string(record.Kind), record.Label,
		record.AmountCents, record.OccurredOn, nullString(record.Notes),
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("収支レコードの作成に失敗しました: %w", err)
	}
	return nil
}

// Update は収支レコードを上書き更新する。
func (r *PostgresFinanceRepo) Update(ctx context.Context, record *model.FinanceRecord) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE finance_records SET
		    client_id = $2, kind = $3, label = $4, amount_cents = $5,
		    occurred_on = $6, notes = $7, updated_at = $8
		 WHERE id = $1`,
		record.ID, record.ClientID, string(record.Kind), record.Label,
		record.AmountCents, record.OccurredOn, nullString(record.Notes),
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("収支レコードの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの収支レコードを削除する。冪等。
func (r *PostgresFinanceRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM finance_records WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("収支レコードの削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FinanceRepository = (*PostgresFinanceRepo)(nil)
