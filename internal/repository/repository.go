package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

// ErrDebtNotFound is returned when no debt matches the requested ID
var ErrDebtNotFound = errors.New("debt not found")

// Repository provides database operations for debts and their payments
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const debtColumns = `
	id, budget_plan_id, name, type, COALESCE(source_type, ''),
	initial_balance, current_balance, amount, monthly_minimum, interest_rate,
	installment_months, due_day, due_date, COALESCE(last_accrual_month, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (*models.Debt, error) {
	var (
		d                 models.Debt
		debtType          string
		monthlyMinimum    decimal.NullDecimal
		interestRate      decimal.NullDecimal
		installmentMonths sql.NullInt64
		dueDay            sql.NullInt64
		dueDate           sql.NullTime
	)
	err := row.Scan(
		&d.ID, &d.BudgetPlanID, &d.Name, &debtType, &d.SourceType,
		&d.InitialBalance, &d.CurrentBalance, &d.Amount, &monthlyMinimum, &interestRate,
		&installmentMonths, &dueDay, &dueDate, &d.LastAccrualMonth, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Type = models.DebtType(debtType)
	if monthlyMinimum.Valid {
		d.MonthlyMinimum = &monthlyMinimum.Decimal
	}
	if interestRate.Valid {
		d.InterestRate = &interestRate.Decimal
	}
	if installmentMonths.Valid {
		v := int(installmentMonths.Int64)
		d.InstallmentMonths = &v
	}
	if dueDay.Valid {
		v := int(dueDay.Int64)
		d.DueDay = &v
	}
	if dueDate.Valid {
		v := civil.DateOf(dueDate.Time.UTC())
		d.DueDate = &v
	}
	return &d, nil
}

// GetDebt retrieves a debt by ID
func (r *Repository) GetDebt(ctx context.Context, id string) (*models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM budget.debts WHERE id = $1`
	debt, err := scanDebt(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDebtNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find debt: %w", err)
	}
	return debt, nil
}

// ListDebtsByPlan retrieves every debt in a budget plan, oldest first
func (r *Repository) ListDebtsByPlan(ctx context.Context, budgetPlanID string) ([]models.Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM budget.debts WHERE budget_plan_id = $1 ORDER BY created_at, id`
	return r.queryDebts(ctx, query, budgetPlanID)
}

// ListAccrualCandidates retrieves non-expense debts with a positive balance and
// a due date or due day, the only debts the missed-payment accrual touches
func (r *Repository) ListAccrualCandidates(ctx context.Context, budgetPlanID string) ([]models.Debt, error) {
	query := `SELECT ` + debtColumns + `
		FROM budget.debts
		WHERE budget_plan_id = $1
		  AND current_balance > 0
		  AND (source_type IS NULL OR source_type <> 'expense')
		  AND (due_date IS NOT NULL OR due_day IS NOT NULL)
		ORDER BY created_at, id`
	return r.queryDebts(ctx, query, budgetPlanID)
}

func (r *Repository) queryDebts(ctx context.Context, query string, args ...any) ([]models.Debt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []models.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	return debts, nil
}

// ListBudgetPlanIDs returns every budget plan that owns at least one debt
func (r *Repository) ListBudgetPlanIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT budget_plan_id FROM budget.debts ORDER BY budget_plan_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget plans: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan budget plan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPayments retrieves a debt's payment history in chronological order
func (r *Repository) ListPayments(ctx context.Context, debtID string) ([]models.Payment, error) {
	query := `
		SELECT id, debt_id, year, month, amount, paid_at
		FROM budget.debt_payments
		WHERE debt_id = $1
		ORDER BY paid_at, id`
	rows, err := r.db.QueryContext(ctx, query, debtID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var (
			p           models.Payment
			year, month sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.DebtID, &year, &month, &p.Amount, &p.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		// Rows without a billing month keep an empty key, which the engine ignores
		if year.Valid && month.Valid {
			p.Month = monthkey.FromYearMonth(int(year.Int64), int(month.Int64))
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// SumPaymentsBetween totals a debt's payments with paid_at in (from, to]
func (r *Repository) SumPaymentsBetween(ctx context.Context, debtID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM budget.debt_payments
		WHERE debt_id = $1 AND paid_at > $2 AND paid_at <= $3`
	var total decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, debtID, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return total, nil
}

// SumPaymentsForMonth totals payments per debt for one billing month of a plan
func (r *Repository) SumPaymentsForMonth(ctx context.Context, budgetPlanID string, ym monthkey.YearMonth) (map[string]decimal.Decimal, error) {
	query := `
		SELECT p.debt_id, COALESCE(SUM(p.amount), 0)
		FROM budget.debt_payments p
		JOIN budget.debts d ON d.id = p.debt_id
		WHERE d.budget_plan_id = $1 AND p.year = $2 AND p.month = $3
		GROUP BY p.debt_id`
	rows, err := r.db.QueryContext(ctx, query, budgetPlanID, ym.Year, ym.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to sum monthly payments: %w", err)
	}
	defer rows.Close()

	paid := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			debtID string
			total  decimal.Decimal
		)
		if err := rows.Scan(&debtID, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly payments: %w", err)
		}
		paid[debtID] = total
	}
	return paid, rows.Err()
}

// ApplyAccruals adds each accrual's remainder to both balances and advances
// the due date or accrual month, all in one transaction
func (r *Repository) ApplyAccruals(ctx context.Context, accruals []models.Accrual) error {
	if len(accruals) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE budget.debts
		SET current_balance = current_balance + $2,
		    initial_balance = initial_balance + $2,
		    due_date = COALESCE($3, due_date),
		    last_accrual_month = COALESCE(NULLIF($4, ''), last_accrual_month)
		WHERE id = $1`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare accrual update: %w", err)
	}
	defer stmt.Close()

	for _, a := range accruals {
		var nextDue sql.NullTime
		if a.NextDueDate != nil {
			nextDue = sql.NullTime{Time: a.NextDueDate.In(time.UTC), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, a.DebtID, a.Remaining, nextDue, a.AccrualKey); err != nil {
			return fmt.Errorf("failed to apply accrual to debt %s: %w", a.DebtID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit accruals: %w", err)
	}
	return nil
}

// DeleteDebt removes a debt and its payment history
func (r *Repository) DeleteDebt(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget.debts WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("failed to delete debt %s: still referenced: %w", id, err)
		}
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	if n == 0 {
		return ErrDebtNotFound
	}
	return nil
}
