package model

import "time"

// AdminUser は管理画面のログインユーザーを表す。
type AdminUser struct {
	ID           string
	Username     string
	DisplayName  string // スレッド表示での送信者ラベルにも使用される
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActorKind はセッションの主体種別を表す。
type ActorKind string

const (
	// ActorKindAdmin は管理者セッションを示す。
	ActorKindAdmin ActorKind = "admin"
	// ActorKindClient はクライアントポータルセッションを示す。
	ActorKindClient ActorKind = "client"
)

// Session はログインセッションを表す。
// 管理者・クライアントアカウントの両方で同一のトークン方式を使用する。
type Session struct {
	ID        string
	ActorKind ActorKind
	ActorID   string // admin_users.id または client_accounts.id
	ClientID  string // ActorKindClientの場合のみ設定される
	ExpiresAt time.Time
	CreatedAt time.Time
}
