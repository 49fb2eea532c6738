package model

import "time"

// Project はクライアント案件を表す。
type Project struct {
	ID          string
	ClientID    *string // 未割当の案件はnil
	Name        string
	Description string
	Status      string // "planned", "active", "done" 等
	BudgetCents int64
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
