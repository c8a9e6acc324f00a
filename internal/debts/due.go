package debts

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

// DefaultGraceDays is how long after a calendar due date a payment is still
// only "overdue" rather than missed.
const DefaultGraceDays = 5

// ComputeAccumulatedDueNow returns how much is currently owed on a debt,
// using the default grace window for calendar due dates.
func ComputeAccumulatedDueNow(debt models.Debt, payments []models.Payment, now time.Time) models.DueNow {
	return DueNowWithGrace(debt, payments, now, DefaultGraceDays)
}

// DueNowWithGrace returns how much is currently owed on a debt.
//
// Debts with a calendar due date owe one period. Debts with only a due day
// accumulate one period per month since the last payment month (or since
// creation when nothing was ever paid). Expense-sourced debts and debts
// without a schedule owe their nominal amount once.
func DueNowWithGrace(debt models.Debt, payments []models.Payment, now time.Time, graceDays int) models.DueNow {
	if debt.DueDate != nil && debt.DueDate.IsValid() && !debt.IsExpenseSourced() {
		return dueDateDueNow(debt, now, graceDays)
	}
	if debt.DueDay == nil || *debt.DueDay <= 0 || debt.IsExpenseSourced() {
		return models.DueNow{Amount: debt.Amount, MonthsDue: 1}
	}

	today := now.UTC()
	effective := monthkey.Of(today)
	if today.Day() < *debt.DueDay {
		effective = effective.Prev()
	}

	monthsDue := 1
	if lastPaid, ok := lastPaidMonth(payments); ok {
		monthsDue = max(1, effective.Sub(lastPaid))
	} else if !debt.CreatedAt.IsZero() {
		monthsDue = max(1, effective.Sub(monthkey.Of(debt.CreatedAt))+1)
	}

	due := models.DueNow{
		Amount:    capByBalance(debt.Amount.Mul(decimal.NewFromInt(int64(monthsDue))), debt.CurrentBalance),
		MonthsDue: monthsDue,
	}
	if monthsDue > 1 {
		due.Note = fmt.Sprintf("%d months due", monthsDue)
	}
	return due
}

// lastPaidMonth returns the latest well-formed payment month. Keys are
// zero-padded so string order is chronological.
func lastPaidMonth(payments []models.Payment) (monthkey.YearMonth, bool) {
	latest := ""
	for _, p := range payments {
		if !monthkey.IsValid(p.Month) {
			continue
		}
		if p.Month > latest {
			latest = p.Month
		}
	}
	if latest == "" {
		return monthkey.YearMonth{}, false
	}
	return monthkey.Parse(latest)
}

func dueDateDueNow(debt models.Debt, now time.Time, graceDays int) models.DueNow {
	due := debt.DueDate.In(time.UTC)
	overdueDays := int(math.Floor(now.Sub(due).Hours() / 24))
	label := formatDMY(*debt.DueDate)

	result := models.DueNow{
		Amount:    capByBalance(debt.Amount, debt.CurrentBalance),
		MonthsDue: 1,
	}
	switch {
	case overdueDays > graceDays:
		result.Note = fmt.Sprintf("Missed payment (due %s)", label)
	case overdueDays > 0:
		result.Note = fmt.Sprintf("Overdue (due %s)", label)
	default:
		result.Note = fmt.Sprintf("Due %s", label)
	}
	return result
}
