package debts

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

// DueCycle is the payment window that settles one calendar due date: from the
// previous due date (exclusive) to the end of the grace period (inclusive).
type DueCycle struct {
	From     time.Time
	GraceEnd time.Time
	NextDue  civil.Date
}

// CycleFor returns the payment window for a due date.
func CycleFor(due civil.Date, graceDays int) DueCycle {
	dueAt := due.In(time.UTC)
	return DueCycle{
		From:     addMonthsClamped(due, -1).In(time.UTC),
		GraceEnd: dueAt.AddDate(0, 0, graceDays),
		NextDue:  addMonthsClamped(due, 1),
	}
}

// NeedsDueDateAccrual reports whether a debt's calendar due date has passed
// its grace window and should be settled.
func NeedsDueDateAccrual(debt models.Debt, now time.Time, graceDays int) bool {
	if debt.DueDate == nil || !debt.DueDate.IsValid() {
		return false
	}
	if debt.IsExpenseSourced() || !debt.CurrentBalance.IsPositive() {
		return false
	}
	return now.After(CycleFor(*debt.DueDate, graceDays).GraceEnd)
}

// PlanDueDateAccrual settles a completed due-date cycle. Whatever was not paid
// during the cycle is added to the balance, and the due date rolls forward one
// month. paidInCycle is the sum of payments inside CycleFor(dueDate).
func PlanDueDateAccrual(debt models.Debt, paidInCycle decimal.Decimal, now time.Time, graceDays int) (models.Accrual, bool) {
	if !NeedsDueDateAccrual(debt, now, graceDays) {
		return models.Accrual{}, false
	}
	cycle := CycleFor(*debt.DueDate, graceDays)
	next := cycle.NextDue
	return models.Accrual{
		DebtID:      debt.ID,
		Remaining:   nonNegative(debt.Amount.Sub(paidInCycle)),
		NextDueDate: &next,
	}, true
}

// NeedsMonthlyAccrual reports whether a due-day debt has not yet been accrued
// for the month before now.
func NeedsMonthlyAccrual(debt models.Debt, now time.Time) bool {
	if debt.DueDay == nil || *debt.DueDay <= 0 || debt.DueDate != nil {
		return false
	}
	if debt.IsExpenseSourced() || !debt.CurrentBalance.IsPositive() {
		return false
	}
	return debt.LastAccrualMonth != monthkey.Of(now).Prev().String()
}

// PlanMonthlyAccrual settles the previous month for a due-day debt. The
// accrual month is recorded so reruns in the same month are no-ops.
// paidPrevMonth is the sum of payments recorded against that month.
func PlanMonthlyAccrual(debt models.Debt, paidPrevMonth decimal.Decimal, now time.Time) (models.Accrual, bool) {
	if !NeedsMonthlyAccrual(debt, now) {
		return models.Accrual{}, false
	}
	return models.Accrual{
		DebtID:     debt.ID,
		Remaining:  nonNegative(debt.Amount.Sub(paidPrevMonth)),
		AccrualKey: monthkey.Of(now).Prev().String(),
	}, true
}
