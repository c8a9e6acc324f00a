package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// DebtType is the kind of obligation a debt represents
type DebtType string

const (
	DebtTypeCreditCard   DebtType = "credit_card"
	DebtTypeStoreCard    DebtType = "store_card"
	DebtTypeLoan         DebtType = "loan"
	DebtTypeMortgage     DebtType = "mortgage"
	DebtTypeHirePurchase DebtType = "hire_purchase"
	DebtTypeOther        DebtType = "other"
)

// SourceTypeExpense marks a debt synthesized from an unpaid recurring expense
const SourceTypeExpense = "expense"

// Debt represents a debt record in a budget plan
type Debt struct {
	ID                string           `json:"id"`
	BudgetPlanID      string           `json:"budgetPlanId"`
	Name              string           `json:"name"`
	Type              DebtType         `json:"type"`
	SourceType        string           `json:"sourceType,omitempty"`
	InitialBalance    decimal.Decimal  `json:"initialBalance"`
	CurrentBalance    decimal.Decimal  `json:"currentBalance"`
	Amount            decimal.Decimal  `json:"amount"` // nominal recurring payment
	MonthlyMinimum    *decimal.Decimal `json:"monthlyMinimum,omitempty"`
	InterestRate      *decimal.Decimal `json:"interestRate,omitempty"` // annual, percent
	InstallmentMonths *int             `json:"installmentMonths,omitempty"`
	DueDay            *int             `json:"dueDay,omitempty"`
	DueDate           *civil.Date      `json:"dueDate,omitempty"`
	LastAccrualMonth  string           `json:"lastAccrualMonth,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
}

// IsExpenseSourced reports whether the debt was created from an unpaid expense
func (d Debt) IsExpenseSourced() bool {
	return d.SourceType == SourceTypeExpense
}

// IsCreditLike reports whether the debt is a revolving card balance
func (d Debt) IsCreditLike() bool {
	return d.Type == DebtTypeCreditCard || d.Type == DebtTypeStoreCard
}

// Agreement holds the contractual terms used to reconstruct a debt's balance.
// It is assembled per call and never persisted.
type Agreement struct {
	InitialBalance        decimal.Decimal `json:"initialBalance"`
	MonthlyPayment        decimal.Decimal `json:"monthlyPayment"`
	AnnualInterestRatePct decimal.Decimal `json:"annualInterestRatePct"`
	InstallmentMonths     int             `json:"installmentMonths,omitempty"`
	FirstPaymentDate      string          `json:"firstPaymentDate"` // YYYY-MM-DD or DD/MM/YYYY
	MissedMonths          int             `json:"missedMonths,omitempty"`
	MissedPaymentFee      decimal.Decimal `json:"missedPaymentFee"`
}
