package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// AgreementBaseline is the expected state of an agreement as of a given day
type AgreementBaseline struct {
	PaymentsScheduled      int             `json:"paymentsScheduled"`
	PaymentsMade           int             `json:"paymentsMade"`
	HistoricalPaidAmount   decimal.Decimal `json:"historicalPaidAmount"`
	ComputedCurrentBalance decimal.Decimal `json:"computedCurrentBalance"`
}

// DueNow is the amount currently owed on a recurring debt
type DueNow struct {
	Amount    decimal.Decimal `json:"dueNowAmount"`
	MonthsDue int             `json:"monthsDue"`
	Note      string          `json:"note,omitempty"`
}

// PayoffInput describes a debt for payoff projection
type PayoffInput struct {
	CurrentBalance        decimal.Decimal
	InitialBalance        decimal.Decimal
	PlannedMonthlyPayment decimal.Decimal
	MonthlyMinimum        decimal.Decimal
	InstallmentMonths     int
	InterestRatePct       decimal.Decimal
	MaxMonths             int // 0 means the default horizon
}

// PayoffProjection is the result of projecting a debt to zero
type PayoffProjection struct {
	MonthlyPayment decimal.Decimal   `json:"computedMonthlyPayment"`
	MonthsLeft     *int              `json:"computedMonthsLeft"`
	PaidOffBy      *time.Time        `json:"computedPaidOffBy"`
	Balances       []decimal.Decimal `json:"balances"`
}

// Accrual is a pending balance increment for a debt that missed a payment
type Accrual struct {
	DebtID      string          `json:"debtId"`
	Remaining   decimal.Decimal `json:"remaining"`
	NextDueDate *civil.Date     `json:"nextDueDate,omitempty"`
	AccrualKey  string          `json:"accrualMonth,omitempty"`
}

// DebtSummary collects every derived figure shown for a single debt
type DebtSummary struct {
	Debt           Debt             `json:"debt"`
	DueNow         DueNow           `json:"dueNow"`
	InstallmentDue decimal.Decimal  `json:"installmentDue"`
	PercentPaid    float64          `json:"percentPaid"`
	CanDelete      bool             `json:"canDelete"`
	Payoff         PayoffProjection `json:"payoff"`
}

// PlanDue lists due-now amounts for every active debt in a plan
type PlanDue struct {
	BudgetPlanID string          `json:"budgetPlanId"`
	Items        []PlanDueItem   `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

// PlanDueItem is one row of PlanDue
type PlanDueItem struct {
	DebtID string `json:"debtId"`
	Name   string `json:"name"`
	DueNow
}

// Reconciliation compares an agreement baseline with the stored balance
type Reconciliation struct {
	DebtID        string            `json:"debtId"`
	Baseline      AgreementBaseline `json:"baseline"`
	StoredBalance decimal.Decimal   `json:"storedBalance"`
	Drift         decimal.Decimal   `json:"drift"` // stored minus computed
}
