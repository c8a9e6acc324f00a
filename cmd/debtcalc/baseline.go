package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Dan9191/budget-debts/internal/debts"
	"github.com/Dan9191/budget-debts/internal/models"
)

func newBaselineCmd(opts *rootOptions) *cobra.Command {
	var (
		initial, payment, rate, fee string
		first                       string
		installments, missed        int
	)
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Reconstruct an agreement's expected balance",
		Example: "  debtcalc baseline --initial 1200 --payment 100 --first 2025-01-01 --now 2025-06-15\n" +
			"  debtcalc baseline --initial 5000 --payment 250 --rate 19.9 --first 01/03/2024 --missed 2 --fee 12",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := opts.clock()
			if err != nil {
				return err
			}
			agreement := models.Agreement{
				InstallmentMonths: installments,
				FirstPaymentDate:  first,
				MissedMonths:      missed,
			}
			for _, f := range []struct {
				name  string
				value string
				dst   *decimal.Decimal
			}{
				{"initial", initial, &agreement.InitialBalance},
				{"payment", payment, &agreement.MonthlyPayment},
				{"rate", rate, &agreement.AnnualInterestRatePct},
				{"fee", fee, &agreement.MissedPaymentFee},
			} {
				v, err := decimal.NewFromString(f.value)
				if err != nil {
					return fmt.Errorf("invalid --%s %q", f.name, f.value)
				}
				*f.dst = v
			}

			baseline, err := debts.ComputeAgreementBaseline(agreement, now)
			if err != nil {
				return err
			}
			text := fmt.Sprintf("payments scheduled: %d\npayments made:      %d\npaid to date:       %s\ncurrent balance:    %s",
				baseline.PaymentsScheduled, baseline.PaymentsMade,
				baseline.HistoricalPaidAmount.StringFixed(2), baseline.ComputedCurrentBalance.StringFixed(2))
			return opts.print(cmd.OutOrStdout(), baseline, text)
		},
	}
	cmd.Flags().StringVar(&initial, "initial", "0", "Initial balance")
	cmd.Flags().StringVar(&payment, "payment", "0", "Monthly payment")
	cmd.Flags().StringVar(&rate, "rate", "0", "Annual interest rate, percent")
	cmd.Flags().StringVar(&fee, "fee", "0", "Fee charged per missed payment")
	cmd.Flags().StringVar(&first, "first", "", "First payment date, YYYY-MM-DD or DD/MM/YYYY")
	cmd.Flags().IntVar(&installments, "installments", 0, "Number of installments, 0 for open-ended")
	cmd.Flags().IntVar(&missed, "missed", 0, "Number of missed payments")
	_ = cmd.MarkFlagRequired("first")
	return cmd
}
