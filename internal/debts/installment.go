package debts

import "github.com/shopspring/decimal"

// ComputeInstallmentDueAmount splits currentBalance evenly over
// installmentMonths, floored by a positive monthlyMinimum. The result is not
// capped by the balance.
func ComputeInstallmentDueAmount(currentBalance decimal.Decimal, installmentMonths int, monthlyMinimum decimal.Decimal) decimal.Decimal {
	if !currentBalance.IsPositive() || installmentMonths <= 0 {
		return decimal.Zero
	}
	base := currentBalance.Div(decimal.NewFromInt(int64(installmentMonths)))
	if monthlyMinimum.IsPositive() {
		return decimal.Max(base, monthlyMinimum)
	}
	return base
}
