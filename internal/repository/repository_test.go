package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

var debtCols = []string{
	"id", "budget_plan_id", "name", "type", "source_type",
	"initial_balance", "current_balance", "amount", "monthly_minimum", "interest_rate",
	"installment_months", "due_day", "due_date", "last_accrual_month", "created_at",
}

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestGetDebt_ScansOptionalColumns(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Date(2025, time.January, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM budget.debts WHERE id = $1")).
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows(debtCols).AddRow(
			"d1", "p1", "Visa", "credit_card", "",
			"1500.00", "1200.50", "75.00", "25.00", nil,
			nil, int64(12), time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), "2025-02", created,
		))

	debt, err := repo.GetDebt(context.Background(), "d1")
	require.NoError(t, err)

	assert.Equal(t, models.DebtTypeCreditCard, debt.Type)
	assert.True(t, decimal.RequireFromString("1200.5").Equal(debt.CurrentBalance))
	require.NotNil(t, debt.MonthlyMinimum)
	assert.True(t, decimal.RequireFromString("25").Equal(*debt.MonthlyMinimum))
	assert.Nil(t, debt.InterestRate)
	assert.Nil(t, debt.InstallmentMonths)
	require.NotNil(t, debt.DueDay)
	assert.Equal(t, 12, *debt.DueDay)
	require.NotNil(t, debt.DueDate)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.March, Day: 10}, *debt.DueDate)
	assert.Equal(t, "2025-02", debt.LastAccrualMonth)
	assert.Equal(t, created, debt.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDebt_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("FROM budget.debts").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDebt(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDebtNotFound)
}

func TestListPayments_BuildsMonthKeys(t *testing.T) {
	repo, mock := newMock(t)
	paid := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM budget.debt_payments").
		WithArgs("d1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "debt_id", "year", "month", "amount", "paid_at"}).
			AddRow("pay1", "d1", int64(2025), int64(3), "50.00", paid).
			AddRow("pay2", "d1", nil, nil, "10.00", paid))

	payments, err := repo.ListPayments(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "2025-03", payments[0].Month)
	assert.Empty(t, payments[1].Month)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSumPaymentsForMonth(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("GROUP BY p.debt_id").
		WithArgs("p1", 2025, 4).
		WillReturnRows(sqlmock.NewRows([]string{"debt_id", "sum"}).
			AddRow("d1", "30.00").
			AddRow("d2", "12.34"))

	paid, err := repo.SumPaymentsForMonth(context.Background(), "p1", monthkey.YearMonth{Year: 2025, Month: 4})
	require.NoError(t, err)
	assert.Len(t, paid, 2)
	assert.True(t, decimal.RequireFromString("12.34").Equal(paid["d2"]))
}

func TestApplyAccruals_SingleTransaction(t *testing.T) {
	repo, mock := newMock(t)
	next := civil.Date{Year: 2025, Month: time.April, Day: 10}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("UPDATE budget.debts")
	prep.ExpectExec().
		WithArgs("card", sqlmock.AnyArg(), sql.NullTime{Time: next.In(time.UTC), Valid: true}, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("monthly", sqlmock.AnyArg(), sql.NullTime{}, "2025-04").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyAccruals(context.Background(), []models.Accrual{
		{DebtID: "card", Remaining: decimal.NewFromInt(60), NextDueDate: &next},
		{DebtID: "monthly", Remaining: decimal.NewFromInt(20), AccrualKey: "2025-04"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAccruals_RollsBackOnError(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("UPDATE budget.debts")
	prep.ExpectExec().WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.ApplyAccruals(context.Background(), []models.Accrual{{DebtID: "card", Remaining: decimal.NewFromInt(1)}})
	assert.ErrorContains(t, err, "failed to apply accrual to debt card")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyAccruals_EmptyIsNoop(t *testing.T) {
	repo, mock := newMock(t)
	require.NoError(t, repo.ApplyAccruals(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDebt(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec("DELETE FROM budget.debts").WithArgs("d1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM budget.debts").WithArgs("gone").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteDebt(context.Background(), "d1"))
	assert.ErrorIs(t, repo.DeleteDebt(context.Background(), "gone"), ErrDebtNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
