// Package model はドメインモデルを定義する。
package model

import "time"

// Message はクライアントとの間でやり取りされるメッセージを表す。
// 作成後に本文・件名が編集されることはなく、変化するのは既読・アーカイブフラグのみ。
type Message struct {
	ID         string
	ClientID   string
	Subject    string
	Body       string // サニタイズ済み
	Author     string // 送信者ラベル（自由テキスト）
	AuthorRole *string // 移行用の明示ロール列。スレッド表示の判定には使用しない
	IsRead     bool
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MessageWithClient はメッセージとクライアントの表示情報を結合したモデル。
// 管理画面の一覧表示用にclientsテーブルとJOINして取得される。
type MessageWithClient struct {
	Message
	ClientName    string
	ClientCompany string
}

// AuthorRole はメッセージ送信者の明示ロールを表す。
// author_role列のバックフィル時のみ使用する（表示時の判定は文字列推定で行う）。
type AuthorRole string

const (
	// AuthorRoleAdmin は運営側の送信者を表す。
	AuthorRoleAdmin AuthorRole = "admin"
	// AuthorRoleClient はクライアント側の送信者を表す。
	AuthorRoleClient AuthorRole = "client"
)
