package model

import "time"

// CheckStatus はWebサイト死活チェックの実行状態を表す。
type CheckStatus string

const (
	// CheckStatusActive はチェック対象であることを示す。
	CheckStatusActive CheckStatus = "active"
	// CheckStatusStopped は連続エラー等によりチェックが停止されたことを示す。
	CheckStatusStopped CheckStatus = "stopped"
)

// Website は管理対象のWebサイトを表す。
// タイトル・faviconはプローブワーカーが取得して保存する。
type Website struct {
	ID                string
	ClientID          *string
	Name              string
	URL               string
	Title             string
	FaviconData       []byte
	FaviconMime       string
	CheckStatus       CheckStatus
	ConsecutiveErrors int
	LastHTTPStatus    int
	LastLatencyMs     int64
	LastCheckedAt     *time.Time
	NextCheckAt       time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
