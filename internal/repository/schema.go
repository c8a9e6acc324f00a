package repository

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS budget;

CREATE TABLE IF NOT EXISTS budget.debts (
    id                   TEXT PRIMARY KEY,
    budget_plan_id       TEXT NOT NULL,
    name                 TEXT NOT NULL,
    type                 TEXT NOT NULL DEFAULT 'other',
    source_type          TEXT,
    initial_balance      NUMERIC(18, 2) NOT NULL DEFAULT 0,
    current_balance      NUMERIC(18, 2) NOT NULL DEFAULT 0,
    amount               NUMERIC(18, 2) NOT NULL DEFAULT 0,
    monthly_minimum      NUMERIC(18, 2),
    interest_rate        NUMERIC(7, 4),
    installment_months   INTEGER,
    due_day              INTEGER CHECK (due_day BETWEEN 1 AND 31),
    due_date             DATE,
    last_accrual_month   TEXT,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS budget.debt_payments (
    id                   TEXT PRIMARY KEY,
    debt_id              TEXT NOT NULL REFERENCES budget.debts(id) ON DELETE CASCADE,
    year                 INTEGER,
    month                INTEGER CHECK (month BETWEEN 1 AND 12),
    amount               NUMERIC(18, 2) NOT NULL,
    paid_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_debts_plan ON budget.debts(budget_plan_id);
CREATE INDEX IF NOT EXISTS idx_debt_payments_debt ON budget.debt_payments(debt_id, paid_at);
`

// Migrate creates the debts schema if it does not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
