package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/budget-debts/internal/debts"
	"github.com/Dan9191/budget-debts/internal/models"
	"github.com/Dan9191/budget-debts/internal/repository"
	"github.com/Dan9191/budget-debts/internal/service"
)

// DebtService is the business logic the handlers expose over HTTP
type DebtService interface {
	ComputeBaseline(ctx context.Context, req service.BaselineRequest) (models.AgreementBaseline, error)
	InstallmentDue(currentBalance decimal.Decimal, installmentMonths int, monthlyMinimum decimal.Decimal) decimal.Decimal
	DueNow(ctx context.Context, debtID string, now time.Time) (models.DueNow, error)
	Summary(ctx context.Context, debtID string, now time.Time) (*models.DebtSummary, error)
	PlanDue(ctx context.Context, budgetPlanID string, now time.Time) (*models.PlanDue, error)
	ReconcileDebt(ctx context.Context, debtID string, req service.BaselineRequest) (*models.Reconciliation, error)
	DeleteDebt(ctx context.Context, debtID string) error
	AccrueMissedPayments(ctx context.Context, budgetPlanID string) ([]models.Accrual, error)
	ReferenceRate(ctx context.Context) (decimal.Decimal, error)
}

type Handler struct {
	svc DebtService
	log *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(svc DebtService, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes registers every endpoint on r
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/agreements/baseline", h.Baseline).Methods(http.MethodPost)
	r.HandleFunc("/installments/due", h.InstallmentDue).Methods(http.MethodPost)
	r.HandleFunc("/debts/{id}/due-now", h.DueNow).Methods(http.MethodGet)
	r.HandleFunc("/debts/{id}/summary", h.Summary).Methods(http.MethodGet)
	r.HandleFunc("/debts/{id}/reconcile", h.Reconcile).Methods(http.MethodPost)
	r.HandleFunc("/debts/{id}", h.DeleteDebt).Methods(http.MethodDelete)
	r.HandleFunc("/plans/{planId}/debts/due", h.PlanDue).Methods(http.MethodGet)
	r.HandleFunc("/plans/{planId}/accruals", h.Accrue).Methods(http.MethodPost)
	r.HandleFunc("/reference-rate", h.ReferenceRate).Methods(http.MethodGet)
}

type installmentRequest struct {
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	InstallmentMonths int             `json:"installmentMonths"`
	MonthlyMinimum    decimal.Decimal `json:"monthlyMinimum"`
}

// Health reports that the process is serving
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Baseline simulates an agreement's expected balance
func (h *Handler) Baseline(w http.ResponseWriter, r *http.Request) {
	var req service.BaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	baseline, err := h.svc.ComputeBaseline(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, baseline)
}

// InstallmentDue returns this month's installment for a balance
func (h *Handler) InstallmentDue(w http.ResponseWriter, r *http.Request) {
	var req installmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount := h.svc.InstallmentDue(req.CurrentBalance, req.InstallmentMonths, req.MonthlyMinimum)
	h.writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"amount": amount})
}

// DueNow returns what is owed on a debt right now
func (h *Handler) DueNow(w http.ResponseWriter, r *http.Request) {
	now, err := parseNow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	due, err := h.svc.DueNow(r.Context(), mux.Vars(r)["id"], now)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, due)
}

// Summary returns all derived figures for a debt
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	now, err := parseNow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.svc.Summary(r.Context(), mux.Vars(r)["id"], now)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// Reconcile compares a debt's stored balance with its agreement baseline
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req service.BaselineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ReconcileDebt(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// DeleteDebt removes a debt when allowed
func (h *Handler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDebt(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlanDue lists what is owed now across a plan
func (h *Handler) PlanDue(w http.ResponseWriter, r *http.Request) {
	now, err := parseNow(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	due, err := h.svc.PlanDue(r.Context(), mux.Vars(r)["planId"], now)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, due)
}

// Accrue runs the missed-payment accrual for one plan
func (h *Handler) Accrue(w http.ResponseWriter, r *http.Request) {
	accruals, err := h.svc.AccrueMissedPayments(r.Context(), mux.Vars(r)["planId"])
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if accruals == nil {
		accruals = []models.Accrual{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"accruals": accruals})
}

// ReferenceRate returns the key rate with bank margin
func (h *Handler) ReferenceRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.ReferenceRate(r.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to get key rate")
		h.writeError(w, http.StatusBadGateway, "failed to get key rate")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"keyRate": rate})
}

// parseNow reads the optional now query parameter as RFC3339 or YYYY-MM-DD
func parseNow(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid now: %q", raw)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *debts.ValidationError
	switch {
	case errors.As(err, &verr):
		h.writeError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, repository.ErrDebtNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDeleteBlocked):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}
