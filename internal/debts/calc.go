// Package debts derives balances and due amounts from debt terms and payment
// history. Every function is pure: callers pass "now" explicitly and load
// debts and payments themselves.
package debts

import (
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// balancePrecision bounds the scale of simulated balances between periods.
const balancePrecision = 10

var (
	one              = decimal.NewFromInt(1)
	hundred          = decimal.NewFromInt(100)
	annualPctToMonth = decimal.NewFromInt(1200) // 12 months * 100 percent
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmyDatePattern   = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualPct decimal.Decimal) decimal.Decimal {
	if !annualPct.IsPositive() {
		return decimal.Zero
	}
	return annualPct.Div(annualPctToMonth)
}

// capByBalance limits amount to balance when the balance is known and positive.
func capByBalance(amount, balance decimal.Decimal) decimal.Decimal {
	if balance.IsPositive() {
		return decimal.Min(amount, balance)
	}
	return amount
}

// ParseAgreementDate accepts YYYY-MM-DD or DD/MM/YYYY and rejects dates that
// would roll over into the next month, such as 31/02/2026.
func ParseAgreementDate(value string) (civil.Date, bool) {
	s := strings.TrimSpace(value)
	var (
		t   time.Time
		err error
	)
	switch {
	case isoDatePattern.MatchString(s):
		t, err = time.Parse("2006-01-02", s)
	case dmyDatePattern.MatchString(s):
		t, err = time.Parse("02/01/2006", s)
	default:
		return civil.Date{}, false
	}
	if err != nil {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}

// addMonthsClamped shifts d by n months, clamping the day to the target
// month's length instead of overflowing into the month after.
func addMonthsClamped(d civil.Date, n int) civil.Date {
	first := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := min(d.Day, lastDay)
	return civil.Date{Year: first.Year(), Month: first.Month(), Day: day}
}

func formatDMY(d civil.Date) string {
	return d.In(time.UTC).Format("02/01/2006")
}
