package model

import "time"

// FinanceKind は収支レコードの種別を表す。
type FinanceKind string

const (
	// FinanceKindIncome は収入を表す。
	FinanceKindIncome FinanceKind = "income"
	// FinanceKindExpense は支出を表す。
	FinanceKindExpense FinanceKind = "expense"
)

// FinanceRecord は収支レコードを表す。
// 金額は丸め誤差を避けるためセント単位の整数で保持する。
type FinanceRecord struct {
	ID          string
	ClientID    *string
	Kind        FinanceKind
	Label       string
	AmountCents int64
	OccurredOn  time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
