// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// ClientRepository はクライアントデータの永続化インターフェース。
type ClientRepository interface {
	// FindByID は指定IDのクライアントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Client, error)

	// List は全クライアントを作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Client, error)

	// ListWithUnread は全クライアントを未読メッセージ数付きで返す。
	// 管理画面の一覧表示用。
	ListWithUnread(ctx context.Context) ([]ClientWithUnread, error)

	// Create はクライアントを作成する。
	Create(ctx context.Context, client *model.Client) error

	// Update はクライアント情報を上書き更新する。
	Update(ctx context.Context, client *model.Client) error

	// Delete は指定IDのクライアントを削除する。
	// 関連するmessages、client_accountsはCASCADE削除される。
	// 存在しないIDの削除はエラーにならない（冪等）。
	Delete(ctx context.Context, id string) error
}

// ClientAccountRepository はクライアントポータルアカウントの永続化インターフェース。
type ClientAccountRepository interface {
	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.ClientAccount, error)

	// FindByUsername はユーザー名でアカウントを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.ClientAccount, error)

	// Create はアカウントを作成する。
	Create(ctx context.Context, account *model.ClientAccount) error

	// DeleteByClientID は指定クライアントの全アカウントを削除する。
	DeleteByClientID(ctx context.Context, clientID string) error
}

// AdminUserRepository は管理者ユーザーの永続化インターフェース。
type AdminUserRepository interface {
	// FindByID は指定IDの管理者を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AdminUser, error)

	// FindByUsername はユーザー名で管理者を検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.AdminUser, error)

	// Create は管理者を作成する。初期セットアップ用。
	Create(ctx context.Context, admin *model.AdminUser) error
}

// SessionRepository はセッションデータの永続化インターフェース。
// セッションIDはトークンそのものではなく、HMAC-SHA256でハッシュ化した値を保存する。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByActorID は指定主体の全セッションを削除する。
	DeleteByActorID(ctx context.Context, actorID string) error
}

// MessageRepository はメッセージデータの永続化インターフェース。
// 本文・件名は作成後に変更されず、既読・アーカイブフラグのみが更新される。
type MessageRepository interface {
	// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Message, error)

	// List はメッセージ一覧をクライアント表示情報付きで作成日時の降順で返す。
	// clientIDが空の場合は全クライアントのメッセージを返す。
	// 呼び出し側はこの並び順に依存してはならない（スレッド表示側で昇順に再ソートされる）。
	List(ctx context.Context, clientID string) ([]model.MessageWithClient, error)

	// Create は新規メッセージを作成する。
	Create(ctx context.Context, msg *model.Message) error

	// UpdateFlags は既読・アーカイブフラグを冪等に部分更新する。
	// nilフィールドは変更しない。対象が存在しない場合はnilを返す（エラーにしない）。
	UpdateFlags(ctx context.Context, id string, isRead *bool, isArchived *bool) (*model.Message, error)

	// Delete は指定IDのメッセージを完全に削除する。
	// 存在しないIDの削除はエラーにならない（冪等）。
	Delete(ctx context.Context, id string) error
}

// ProjectRepository は案件データの永続化インターフェース。
type ProjectRepository interface {
	// FindByID は指定IDの案件を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// List は案件一覧を作成日時の降順で返す。
	// clientIDが空でない場合はそのクライアントの案件のみを返す。
	List(ctx context.Context, clientID string) ([]*model.Project, error)

	// Create は案件を作成する。
	Create(ctx context.Context, project *model.Project) error

	// Update は案件情報を上書き更新する。
	Update(ctx context.Context, project *model.Project) error

	// Delete は指定IDの案件を削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// WebsiteRepository はWebサイトデータの永続化インターフェース。
type WebsiteRepository interface {
	// FindByID は指定IDのWebサイトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Website, error)

	// List はWebサイト一覧を作成日時の降順で返す。
	// clientIDが空でない場合はそのクライアントのサイトのみを返す。
	List(ctx context.Context, clientID string) ([]*model.Website, error)

	// Create はWebサイトを作成する。
	Create(ctx context.Context, website *model.Website) error

	// Update はWebサイト情報を上書き更新する。
	Update(ctx context.Context, website *model.Website) error

	// Delete は指定IDのWebサイトを削除する。冪等。
	Delete(ctx context.Context, id string) error

	// ListDueForCheck は死活チェック対象のWebサイトを取得する。
	// next_check_at <= now() かつ check_status = 'active' のサイトを
	// FOR UPDATE SKIP LOCKEDで排他的に取得する。
	ListDueForCheck(ctx context.Context) ([]*model.Website, error)

	// UpdateCheckState は死活チェック結果を更新する。
	// check_status、consecutive_errors、last_http_status、last_latency_ms、
	// last_checked_at、next_check_atを更新する。
	UpdateCheckState(ctx context.Context, website *model.Website) error

	// UpdateMetadata はプローブが取得したタイトルとfaviconを更新する。
	UpdateMetadata(ctx context.Context, websiteID, title string, faviconData []byte, faviconMime string) error
}

// IdeaRepository はアイデアデータの永続化インターフェース。
type IdeaRepository interface {
	// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Idea, error)

	// List はアイデア一覧を作成日時の降順で返す。
	List(ctx context.Context) ([]*model.Idea, error)

	// Create はアイデアを作成する。
	Create(ctx context.Context, idea *model.Idea) error

	// Update はアイデアを上書き更新する。
	Update(ctx context.Context, idea *model.Idea) error

	// Delete は指定IDのアイデアを削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// FinanceRepository は収支レコードの永続化インターフェース。
type FinanceRepository interface {
	// FindByID は指定IDの収支レコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.FinanceRecord, error)

	// List は収支レコード一覧を発生日の降順で返す。
	// clientIDが空でない場合はそのクライアントのレコードのみを返す。
	List(ctx context.Context, clientID string) ([]*model.FinanceRecord, error)

	// Create は収支レコードを作成する。
	Create(ctx context.Context, record *model.FinanceRecord) error

	// Update は収支レコードを上書き更新する。
	Update(ctx context.Context, record *model.FinanceRecord) error

	// Delete は指定IDの収支レコードを削除する。冪等。
	Delete(ctx context.Context, id string) error
}

// ClientWithUnread はクライアントと未読メッセージ数を結合した構造体。
type ClientWithUnread struct {
	model.Client
	UnreadCount   int
	LastMessageAt *time.Time
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
