package debts

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/budget-debts/internal/models"
)

// DefaultPayoffHorizon is the longest projection, in months, when the caller
// does not set one.
const DefaultPayoffHorizon = 60

// ProjectPayoff simulates a debt month by month until it reaches zero or the
// horizon runs out.
//
// Without a planned payment the installment plan is used, based on the
// original balance so months left drops as installments are paid. A positive
// monthly minimum floors the payment.
func ProjectPayoff(in models.PayoffInput, now time.Time) models.PayoffProjection {
	horizon := in.MaxMonths
	if horizon <= 0 {
		horizon = DefaultPayoffHorizon
	}
	current := nonNegative(in.CurrentBalance)
	initial := nonNegative(in.InitialBalance)

	planned := in.PlannedMonthlyPayment
	if !planned.IsPositive() && in.InstallmentMonths > 0 {
		principal := initial
		if !principal.IsPositive() {
			principal = current
		}
		if principal.IsPositive() {
			planned = principal.Div(decimal.NewFromInt(int64(in.InstallmentMonths)))
		}
	}
	if in.MonthlyMinimum.IsPositive() {
		planned = decimal.Max(planned, in.MonthlyMinimum)
	}
	payment := nonNegative(planned)
	rate := monthlyRate(in.InterestRatePct)
	growth := one.Add(rate)

	balances := []decimal.Decimal{current}
	balance := current
	for i := 0; i < horizon && balance.IsPositive(); i++ {
		if rate.IsPositive() {
			balance = balance.Mul(growth)
		}
		balance = decimal.Max(decimal.Zero, balance.Sub(payment)).Round(balancePrecision)
		balances = append(balances, balance)
	}

	result := models.PayoffProjection{MonthlyPayment: payment, Balances: balances}
	monthsLeft := len(balances) - 1
	cannotPayoff := payment.IsZero() || balances[len(balances)-1].IsPositive()
	if cannotPayoff {
		return result
	}
	if !current.IsPositive() || monthsLeft == 0 {
		zero := 0
		result.MonthsLeft = &zero
		return result
	}

	paidOffBy := now.AddDate(0, monthsLeft, 0)
	result.MonthsLeft = &monthsLeft
	result.PaidOffBy = &paidOffBy
	return result
}
