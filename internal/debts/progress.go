package debts

import (
	"time"

	"github.com/Dan9191/budget-debts/internal/models"
)

// nearPaydayDays is the window in which a debt is flagged as due around payday.
const nearPaydayDays = 3

// PercentPaid returns how much of the initial balance has been paid off.
// The value is not clamped: fees or drift can push it below 0 or above 100.
func PercentPaid(debt models.Debt) float64 {
	if !debt.InitialBalance.IsPositive() {
		return 0
	}
	paid := debt.InitialBalance.Sub(debt.CurrentBalance)
	return paid.Div(debt.InitialBalance).Mul(hundred).InexactFloat64()
}

// CanDelete reports whether a debt may be removed. Expense-sourced debts stay
// until the originating expense is settled.
func CanDelete(debt models.Debt) bool {
	return !(debt.IsExpenseSourced() && debt.CurrentBalance.IsPositive())
}

// DaysUntilPayday counts days from now to the next payDay of the month,
// wrapping into next month when payDay has already passed.
func DaysUntilPayday(now time.Time, payDay int) int {
	current := now.Day()
	if payDay >= current {
		return payDay - current
	}
	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	return daysInMonth - current + payDay
}

// IsNearPayday reports whether a debt with a positive amount falls due within
// a few days of payday.
func IsNearPayday(debt models.Debt, daysUntilPayday int) bool {
	return daysUntilPayday <= nearPaydayDays && debt.Amount.IsPositive()
}
