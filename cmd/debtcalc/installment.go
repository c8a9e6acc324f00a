package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Dan9191/budget-debts/internal/debts"
)

func newInstallmentCmd(opts *rootOptions) *cobra.Command {
	var (
		balance, minimum string
		months           int
	)
	cmd := &cobra.Command{
		Use:     "installment",
		Short:   "Compute this month's installment on a balance",
		Example: "  debtcalc installment --balance 600 --months 12 --minimum 60",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid --balance %q", balance)
			}
			minAmount, err := decimal.NewFromString(minimum)
			if err != nil {
				return fmt.Errorf("invalid --minimum %q", minimum)
			}

			amount := debts.ComputeInstallmentDueAmount(bal, months, minAmount)
			return opts.print(cmd.OutOrStdout(), map[string]decimal.Decimal{"amount": amount}, amount.StringFixed(2))
		},
	}
	cmd.Flags().StringVar(&balance, "balance", "0", "Current balance")
	cmd.Flags().StringVar(&minimum, "minimum", "0", "Monthly minimum payment")
	cmd.Flags().IntVar(&months, "months", 0, "Installment months")
	return cmd
}
