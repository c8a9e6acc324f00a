package debts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Dan9191/budget-debts/internal/models"
)

func TestPercentPaid(t *testing.T) {
	tests := []struct {
		initial, current string
		want             float64
	}{
		{"500", "0", 100},
		{"500", "500", 0},
		{"400", "100", 75},
		{"500", "600", -20},
		{"500", "-100", 120},
		{"0", "100", 0},
		{"-10", "0", 0},
	}
	for _, tt := range tests {
		debt := models.Debt{InitialBalance: dec(tt.initial), CurrentBalance: dec(tt.current)}
		assert.InDelta(t, tt.want, PercentPaid(debt), 1e-9, "initial %s current %s", tt.initial, tt.current)
	}
}

func TestCanDelete(t *testing.T) {
	tests := []struct {
		sourceType string
		balance    string
		want       bool
	}{
		{models.SourceTypeExpense, "10", false},
		{models.SourceTypeExpense, "0", true},
		{models.SourceTypeExpense, "-5", true},
		{"", "10", true},
		{"", "0", true},
		{"manual", "250", true},
	}
	for _, tt := range tests {
		debt := models.Debt{SourceType: tt.sourceType, CurrentBalance: dec(tt.balance)}
		assert.Equal(t, tt.want, CanDelete(debt), "sourceType %q balance %s", tt.sourceType, tt.balance)
	}
}

func TestDaysUntilPayday(t *testing.T) {
	assert.Equal(t, 0, DaysUntilPayday(day(2025, time.March, 25), 25))
	assert.Equal(t, 5, DaysUntilPayday(day(2025, time.March, 20), 25))
	// March has 31 days: 31 - 28 + 1
	assert.Equal(t, 4, DaysUntilPayday(day(2025, time.March, 28), 1))
	// February 2024 has 29 days: 29 - 26 + 15
	assert.Equal(t, 18, DaysUntilPayday(day(2024, time.February, 26), 15))
}

func TestIsNearPayday(t *testing.T) {
	debt := models.Debt{Amount: dec("40")}
	assert.True(t, IsNearPayday(debt, 0))
	assert.True(t, IsNearPayday(debt, 3))
	assert.False(t, IsNearPayday(debt, 4))

	debt.Amount = dec("0")
	assert.False(t, IsNearPayday(debt, 1))
}
