package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/budget-debts/internal/config"
	"github.com/Dan9191/budget-debts/internal/debts"
	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/monthkey"
)

// ErrDeleteBlocked is returned when an expense-sourced debt still has a balance
var ErrDeleteBlocked = errors.New("debt cannot be deleted while its expense is unpaid")

// driftThreshold is the smallest stored-vs-computed difference worth reporting
var driftThreshold = decimal.RequireFromString("0.01")

// maxCatchUpCycles bounds how many missed due dates one accrual run settles per debt
const maxCatchUpCycles = 120

// Store is the persistence the service depends on
type Store interface {
	GetDebt(ctx context.Context, id string) (*models.Debt, error)
	ListDebtsByPlan(ctx context.Context, budgetPlanID string) ([]models.Debt, error)
	ListAccrualCandidates(ctx context.Context, budgetPlanID string) ([]models.Debt, error)
	ListBudgetPlanIDs(ctx context.Context) ([]string, error)
	ListPayments(ctx context.Context, debtID string) ([]models.Payment, error)
	SumPaymentsBetween(ctx context.Context, debtID string, from, to time.Time) (decimal.Decimal, error)
	SumPaymentsForMonth(ctx context.Context, budgetPlanID string, ym monthkey.YearMonth) (map[string]decimal.Decimal, error)
	ApplyAccruals(ctx context.Context, accruals []models.Accrual) error
	DeleteDebt(ctx context.Context, id string) error
}

// RateProvider supplies the reference rate for tracker agreements
type RateProvider interface {
	KeyRate(ctx context.Context) (decimal.Decimal, error)
	GetKeyRate(ctx context.Context) (decimal.Decimal, error)
}

// BaselineRequest is an agreement plus options for how to evaluate it
type BaselineRequest struct {
	models.Agreement
	Now              *time.Time       `json:"now,omitempty"`
	UseReferenceRate bool             `json:"useReferenceRate,omitempty"`
	RateMarginPct    *decimal.Decimal `json:"rateMarginPct,omitempty"`
}

// Service handles business logic
type Service struct {
	store     Store
	rates     RateProvider
	log       *logrus.Logger
	graceDays int
	now       func() time.Time
}

// NewService initializes a new service
func NewService(store Store, rates RateProvider, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		rates:     rates,
		log:       log,
		graceDays: cfg.DueGraceDays,
		now:       time.Now,
	}
}

func (s *Service) resolveNow(now time.Time) time.Time {
	if now.IsZero() {
		return s.now()
	}
	return now
}

// ComputeBaseline simulates an agreement, optionally priced off the reference rate
func (s *Service) ComputeBaseline(ctx context.Context, req BaselineRequest) (models.AgreementBaseline, error) {
	agreement := req.Agreement
	if req.UseReferenceRate {
		rate, err := s.referenceRate(ctx, req.RateMarginPct)
		if err != nil {
			return models.AgreementBaseline{}, err
		}
		agreement.AnnualInterestRatePct = rate
	}

	var now time.Time
	if req.Now != nil {
		now = *req.Now
	}
	return debts.ComputeAgreementBaseline(agreement, s.resolveNow(now))
}

func (s *Service) referenceRate(ctx context.Context, margin *decimal.Decimal) (decimal.Decimal, error) {
	if s.rates == nil {
		return decimal.Zero, fmt.Errorf("reference rate is not configured")
	}
	if margin == nil {
		rate, err := s.rates.GetKeyRate(ctx)
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to get reference rate: %w", err)
		}
		return rate, nil
	}
	rate, err := s.rates.KeyRate(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get reference rate: %w", err)
	}
	return rate.Add(*margin), nil
}

// ReferenceRate returns the key rate including the configured bank margin
func (s *Service) ReferenceRate(ctx context.Context) (decimal.Decimal, error) {
	return s.referenceRate(ctx, nil)
}

// InstallmentDue returns the payment owed this month on an installment plan
func (s *Service) InstallmentDue(currentBalance decimal.Decimal, installmentMonths int, monthlyMinimum decimal.Decimal) decimal.Decimal {
	return debts.ComputeInstallmentDueAmount(currentBalance, installmentMonths, monthlyMinimum)
}

// DueNow loads a debt with its payments and computes what is owed at now
func (s *Service) DueNow(ctx context.Context, debtID string, now time.Time) (models.DueNow, error) {
	debt, payments, err := s.loadDebt(ctx, debtID)
	if err != nil {
		return models.DueNow{}, err
	}
	return debts.DueNowWithGrace(*debt, payments, s.resolveNow(now), s.graceDays), nil
}

func (s *Service) loadDebt(ctx context.Context, debtID string) (*models.Debt, []models.Payment, error) {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.store.ListPayments(ctx, debtID)
	if err != nil {
		return nil, nil, err
	}
	return debt, payments, nil
}

// Summary gathers every derived figure for one debt
func (s *Service) Summary(ctx context.Context, debtID string, now time.Time) (*models.DebtSummary, error) {
	debt, payments, err := s.loadDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	now = s.resolveNow(now)

	var (
		minimum      decimal.Decimal
		rate         decimal.Decimal
		installments int
	)
	if debt.MonthlyMinimum != nil {
		minimum = *debt.MonthlyMinimum
	}
	if debt.InterestRate != nil {
		rate = *debt.InterestRate
	}
	if debt.InstallmentMonths != nil {
		installments = *debt.InstallmentMonths
	}

	return &models.DebtSummary{
		Debt:           *debt,
		DueNow:         debts.DueNowWithGrace(*debt, payments, now, s.graceDays),
		InstallmentDue: debts.ComputeInstallmentDueAmount(debt.CurrentBalance, installments, minimum),
		PercentPaid:    debts.PercentPaid(*debt),
		CanDelete:      debts.CanDelete(*debt),
		Payoff: debts.ProjectPayoff(models.PayoffInput{
			CurrentBalance:        debt.CurrentBalance,
			InitialBalance:        debt.InitialBalance,
			PlannedMonthlyPayment: debt.Amount,
			MonthlyMinimum:        minimum,
			InstallmentMonths:     installments,
			InterestRatePct:       rate,
		}, now),
	}, nil
}

// PlanDue lists what is owed now on every debt in a plan that still has a balance
func (s *Service) PlanDue(ctx context.Context, budgetPlanID string, now time.Time) (*models.PlanDue, error) {
	list, err := s.store.ListDebtsByPlan(ctx, budgetPlanID)
	if err != nil {
		return nil, err
	}
	now = s.resolveNow(now)

	result := &models.PlanDue{BudgetPlanID: budgetPlanID, Items: []models.PlanDueItem{}, Total: decimal.Zero}
	for _, debt := range list {
		if !debt.CurrentBalance.IsPositive() {
			continue
		}
		payments, err := s.store.ListPayments(ctx, debt.ID)
		if err != nil {
			return nil, err
		}
		due := debts.DueNowWithGrace(debt, payments, now, s.graceDays)
		result.Items = append(result.Items, models.PlanDueItem{DebtID: debt.ID, Name: debt.Name, DueNow: due})
		result.Total = result.Total.Add(due.Amount)
	}
	return result, nil
}

// ReconcileDebt rebuilds a debt's balance from its agreement and compares it
// with the stored one
func (s *Service) ReconcileDebt(ctx context.Context, debtID string, req BaselineRequest) (*models.Reconciliation, error) {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	baseline, err := s.ComputeBaseline(ctx, req)
	if err != nil {
		return nil, err
	}

	drift := debt.CurrentBalance.Sub(baseline.ComputedCurrentBalance)
	if drift.Abs().GreaterThan(driftThreshold) {
		s.log.WithFields(logrus.Fields{
			"debt_id":  debtID,
			"stored":   debt.CurrentBalance.String(),
			"computed": baseline.ComputedCurrentBalance.StringFixed(2),
			"drift":    drift.StringFixed(2),
		}).Warn("Stored balance drifted from agreement baseline")
	}

	return &models.Reconciliation{
		DebtID:        debtID,
		Baseline:      baseline,
		StoredBalance: debt.CurrentBalance,
		Drift:         drift,
	}, nil
}

// DeleteDebt removes a debt unless its originating expense is still unpaid
func (s *Service) DeleteDebt(ctx context.Context, debtID string) error {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return err
	}
	if !debts.CanDelete(*debt) {
		return ErrDeleteBlocked
	}
	if err := s.store.DeleteDebt(ctx, debtID); err != nil {
		return err
	}
	s.log.Infof("Debt deleted: %s", debtID)
	return nil
}

// AccrueMissedPayments adds unpaid amounts to the balances of a plan's debts
// whose due date or due month has lapsed
func (s *Service) AccrueMissedPayments(ctx context.Context, budgetPlanID string) ([]models.Accrual, error) {
	candidates, err := s.store.ListAccrualCandidates(ctx, budgetPlanID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	var (
		accruals      []models.Accrual
		paidPrevMonth map[string]decimal.Decimal
	)
	for _, debt := range candidates {
		if debt.DueDate != nil {
			planned, err := s.planDueDateAccruals(ctx, debt, now)
			if err != nil {
				return nil, err
			}
			accruals = append(accruals, planned...)
			continue
		}

		if !debts.NeedsMonthlyAccrual(debt, now) {
			continue
		}
		if paidPrevMonth == nil {
			paidPrevMonth, err = s.store.SumPaymentsForMonth(ctx, budgetPlanID, monthkey.Of(now).Prev())
			if err != nil {
				return nil, err
			}
		}
		if a, ok := debts.PlanMonthlyAccrual(debt, paidPrevMonth[debt.ID], now); ok {
			accruals = append(accruals, a)
		}
	}

	if err := s.store.ApplyAccruals(ctx, accruals); err != nil {
		return nil, err
	}
	if len(accruals) > 0 {
		s.log.WithFields(logrus.Fields{
			"budget_plan_id": budgetPlanID,
			"accruals":       len(accruals),
		}).Info("Applied missed-payment accruals")
	}
	return accruals, nil
}

// planDueDateAccruals settles every lapsed due-date cycle of a debt in order
func (s *Service) planDueDateAccruals(ctx context.Context, debt models.Debt, now time.Time) ([]models.Accrual, error) {
	var planned []models.Accrual
	for i := 0; i < maxCatchUpCycles && debts.NeedsDueDateAccrual(debt, now, s.graceDays); i++ {
		cycle := debts.CycleFor(*debt.DueDate, s.graceDays)
		paid, err := s.store.SumPaymentsBetween(ctx, debt.ID, cycle.From, cycle.GraceEnd)
		if err != nil {
			return nil, err
		}
		a, ok := debts.PlanDueDateAccrual(debt, paid, now, s.graceDays)
		if !ok {
			break
		}
		planned = append(planned, a)

		debt.DueDate = a.NextDueDate
		debt.CurrentBalance = debt.CurrentBalance.Add(a.Remaining)
		debt.InitialBalance = debt.InitialBalance.Add(a.Remaining)
	}
	return planned, nil
}

// AccrueAllPlans runs the missed-payment accrual for every budget plan
func (s *Service) AccrueAllPlans(ctx context.Context) error {
	planIDs, err := s.store.ListBudgetPlanIDs(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range planIDs {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.AccrueMissedPayments(ctx, id); err != nil {
			s.log.WithError(err).Errorf("Accrual failed for budget plan %s", id)
			errs = append(errs, fmt.Errorf("budget plan %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
