package debts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeInstallmentDueAmount(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		months  int
		minimum string
		want    string
	}{
		{"minimum wins", "300", 3, "150", "150"},
		{"even split wins", "900", 3, "150", "300"},
		{"no minimum", "1200", 12, "0", "100"},
		{"negative minimum ignored", "1200", 12, "-50", "100"},
		{"minimum above balance is not capped", "100", 2, "150", "150"},
		{"zero balance", "0", 3, "150", "0"},
		{"negative balance", "-10", 3, "0", "0"},
		{"no plan", "300", 0, "150", "0"},
		{"negative months", "300", -2, "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeInstallmentDueAmount(dec(tt.balance), tt.months, dec(tt.minimum))
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestComputeInstallmentDueAmount_EqualsEvenSplitWithoutMinimum(t *testing.T) {
	balance := dec("1000")
	for months := 1; months <= 36; months++ {
		want := balance.Div(decimal.NewFromInt(int64(months)))
		got := ComputeInstallmentDueAmount(balance, months, decimal.Zero)
		assert.True(t, want.Equal(got), "months %d: want %s, got %s", months, want, got)
	}
}

func TestComputeInstallmentDueAmount_AtLeastMinimumOrBalance(t *testing.T) {
	minimum := dec("75")
	for _, b := range []string{"10", "74.99", "75", "200", "5000"} {
		balance := dec(b)
		got := ComputeInstallmentDueAmount(balance, 24, minimum)
		floor := decimal.Min(minimum, balance)
		assert.True(t, got.GreaterThanOrEqual(floor), "balance %s: %s < %s", b, got, floor)
	}
}
