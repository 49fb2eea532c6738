package model

import "time"

// Idea は社内のアイデアメモを表す。
type Idea struct {
	ID        string
	Title     string
	Body      string // サニタイズ済み
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
