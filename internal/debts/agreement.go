package debts

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

// maxScheduleDay keeps the scheduling day valid in every month.
const maxScheduleDay = 28

// ComputeAgreementBaseline reconstructs the expected state of an agreement as
// of now from its contractual terms alone.
//
// Only a count of missed months is known, so the simulation treats the most
// recent scheduled periods as the missed ones. Each missed period adds the
// missed payment fee instead of subtracting the payment.
func ComputeAgreementBaseline(a models.Agreement, now time.Time) (models.AgreementBaseline, error) {
	first, ok := ParseAgreementDate(a.FirstPaymentDate)
	if !ok {
		return models.AgreementBaseline{}, ErrInvalidFirstPaymentDate
	}

	initial := nonNegative(a.InitialBalance)
	payment := nonNegative(a.MonthlyPayment)
	if !initial.IsPositive() {
		return models.AgreementBaseline{}, ErrNonPositiveBalance
	}
	if !payment.IsPositive() {
		return models.AgreementBaseline{}, ErrNonPositivePayment
	}

	scheduled := scheduledPayments(first, now)
	if term := max(0, a.InstallmentMonths); term > 0 {
		scheduled = min(scheduled, term)
	}
	made := max(0, scheduled-max(0, a.MissedMonths))

	fee := nonNegative(a.MissedPaymentFee)
	rate := monthlyRate(a.AnnualInterestRatePct)
	growth := one.Add(rate)

	balance := initial
	for period := 1; period <= scheduled; period++ {
		if rate.IsPositive() {
			balance = balance.Mul(growth)
		}
		if period <= made {
			balance = balance.Sub(payment)
		} else {
			balance = balance.Add(fee)
		}
		balance = decimal.Max(decimal.Zero, balance).Round(balancePrecision)
		if balance.IsZero() {
			break
		}
	}

	return models.AgreementBaseline{
		PaymentsScheduled:      scheduled,
		PaymentsMade:           made,
		HistoricalPaidAmount:   payment.Mul(decimal.NewFromInt(int64(made))),
		ComputedCurrentBalance: balance,
	}, nil
}

// scheduledPayments counts billing periods from the first payment month up to
// and including the current month, minus the current one if its payment day
// has not been reached yet.
func scheduledPayments(first civil.Date, now time.Time) int {
	today := civil.DateOf(now.UTC())
	day := min(max(first.Day, 1), maxScheduleDay)

	from := monthkey.YearMonth{Year: first.Year, Month: int(first.Month)}
	to := monthkey.YearMonth{Year: today.Year, Month: int(today.Month)}
	n := to.Sub(from) + 1
	if today.Day < day {
		n--
	}
	return max(0, n)
}
