package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// PostgresWebsiteRepo はPostgreSQLを使用したWebサイトリポジトリ。
type PostgresWebsiteRepo struct {
	db *sql.DB
}

// NewPostgresWebsiteRepo はPostgresWebsiteRepoを生成する。
func NewPostgresWebsiteRepo(db *sql.DB) *PostgresWebsiteRepo {
	return &PostgresWebsiteRepo{db: db}
}

func scanWebsite(scanner interface {
	Scan(dest ...interface{}) error
}) (*model.Website, error) {
	website := &model.Website{}
	var clientID, title, faviconMime sql.NullString
	var checkStatus string
	var lastHTTPStatus sql.NullInt64
	var lastLatencyMs sql.NullInt64
	var lastCheckedAt sql.NullTime

	err := scanner.Scan(
		&website.ID, &clientID, &website.Name, &website.URL,
		&title, &website.FaviconData, &faviconMime,
		&checkStatus, &website.ConsecutiveErrors,
		&lastHTTPStatus, &lastLatencyMs, &lastCheckedAt, &website.NextCheckAt,
		&website.CreatedAt, &website.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if clientID.Valid {
		website.ClientID = &clientID.String
	}
	website.Title = nullStringValue(title)
	website.FaviconMime = nullStringValue(faviconMime)
	website.CheckStatus = model.CheckStatus(checkStatus)
	if lastHTTPStatus.Valid {
		website.LastHTTPStatus = int(lastHTTPStatus.Int64)
	}
	if lastLatencyMs.Valid {
		website.LastLatencyMs = lastLatencyMs.Int64
	}
	if lastCheckedAt.Valid {
		website.LastCheckedAt = &lastCheckedAt.Time
	}

	return website, nil
}

const websiteColumns = `id, client_id, name, url, title, favicon_data, favicon_mime,
	       check_status, consecutive_errors, last_http_status, last_latency_ms,
	       last_checked_at, next_check_at, created_at, updated_at`

// FindByID は指定IDのWebサイトを取得する。見つからない場合はnilを返す。
func (r *PostgresWebsiteRepo) FindByID(ctx context.Context, id string) (*model.Website, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+websiteColumns+` FROM websites WHERE id = $1`,
		id,
	)

	website, err := scanWebsite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Webサイトの取得に失敗しました: %w", err)
	}

	return website, nil
}

// List はWebサイト一覧を作成日時の降順で返す。
// clientIDが空でない場合はそのクライアントのサイトのみを返す。
func (r *PostgresWebsiteRepo) List(ctx context.Context, clientID string) ([]*model.Website, error) {
	baseQuery := `SELECT ` + websiteColumns + ` FROM websites`

	args := []interface{}{}
	if clientID != "" {
		baseQuery += " WHERE client_id = $1"
		args = append(args, clientID)
	}
	baseQuery += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("Webサイト一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var websites []*model.Website
	for rows.Next() {
		website, err := scanWebsite(rows)
		if err != nil {
			return nil, fmt.Errorf("Webサイト行の読み取りに失敗しました: %w", err)
		}
		websites = append(websites, website)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Webサイト一覧の走査に失敗しました: %w", err)
	}

	return websites, nil
}

// Create はWebサイトを作成する。
func (r *PostgresWebsiteRepo) Create(ctx context.Context, website *model.Website) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO websites (id, client_id, name, url, title, favicon_data, favicon_mime,
		                       check_status, consecutive_errors, last_http_status, last_latency_ms,
		                       last_checked_at, next_check_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		website.ID, website.ClientID, website.Name, website.URL,
		nullString(website.Title), website.FaviconData, nullString(website.FaviconMime),
		string(website.CheckStatus), website.ConsecutiveErrors,
		website.LastHTTPStatus, website.LastLatencyMs,
		website.LastCheckedAt, website.NextCheckAt,
		website.CreatedAt, website.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Webサイトの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はWebサイトの基本情報を上書き更新する。
// チェック状態の更新はUpdateCheckStateを使用する。
func (r *PostgresWebsiteRepo) Update(ctx context.Context, website *model.Website) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE websites SET
		    client_id = $2, name = $3, url = $4, check_status = $5, updated_at = $6
		 WHERE id = $1`,
		website.ID, website.ClientID, website.Name, website.URL,
		string(website.CheckStatus), website.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Webサイトの更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDのWebサイトを削除する。冪等。
func (r *PostgresWebsiteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM websites WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("Webサイトの削除に失敗しました: %w", err)
	}
	return nil
}

// ListDueForCheck は死活チェック対象のWebサイトを取得する。
// 複数ワーカーの同時実行を想定してFOR UPDATE SKIP LOCKEDで行をスキップする。
func (r *PostgresWebsiteRepo) ListDueForCheck(ctx context.Context) ([]*model.Website, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+websiteColumns+`
		 FROM websites
		 WHERE check_status = 'active' AND next_check_at <= now()
		 ORDER BY next_check_at
		 FOR UPDATE SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("チェック対象Webサイトの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var websites []*model.Website
	for rows.Next() {
		website, err := scanWebsite(rows)
		if err != nil {
			return nil, fmt.Errorf("チェック対象Webサイト行の読み取りに失敗しました: %w", err)
		}
		websites = append(websites, website)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("チェック対象Webサイトの走査に失敗しました: %w", err)
	}

	return websites, nil
}

// UpdateCheckState は死活チェック結果を更新する。
func (r *PostgresWebsiteRepo) UpdateCheckState(ctx context.Context, website *model.Website) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE websites SET
		    check_status = $2, consecutive_errors = $3, last_http_status = $4,
		    last_latency_ms = $5, last_checked_at = $6, next_check_at = $7, updated_at = $8
		 WHERE id = $1`,
		website.ID, string(website.CheckStatus), website.ConsecutiveErrors,
		website.LastHTTPStatus, website.LastLatencyMs,
		website.LastCheckedAt, website.NextCheckAt, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Webサイトのチェック状態更新に失敗しました: %w", err)
	}
	return nil
}

// UpdateMetadata はプローブが取得したタイトルとfaviconを更新する。
func (r *PostgresWebsiteRepo) UpdateMetadata(ctx context.Context, websiteID, title string, faviconData []byte, faviconMime string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE websites SET title = $2, favicon_data = $3, favicon_mime = $4, updated_at = $5
		 WHERE id = $1`,
		websiteID, nullString(title), faviconData, nullString(faviconMime), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Webサイトのメタデータ更新に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ WebsiteRepository = (*PostgresWebsiteRepo)(nil)
