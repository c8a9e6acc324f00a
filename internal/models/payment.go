package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents a recorded payment against a debt
type Payment struct {
	ID     string          `json:"id"`
	DebtID string          `json:"debtId"`
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
	PaidAt time.Time       `json:"paidAt"`
}
