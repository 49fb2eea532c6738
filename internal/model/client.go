// Package model はドメインモデルを定義する。
package model

import "time"

// Client は取引先クライアントを表す。
type Client struct {
	ID          string
	Name        string
	Company     string
	ContactName string
	Email       string
	Phone       string
	Status      string // "active", "prospect", "archived" 等の自由運用
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ClientAccount はクライアントポータルのログインアカウントを表す。
// 1クライアントに複数アカウントを発行できる。
type ClientAccount struct {
	ID           string
	ClientID     string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
