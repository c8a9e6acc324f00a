package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Dan9191/budget-debts/internal/monthkey"
)

func newMonthsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Billing-month key arithmetic (YYYY-MM)",
	}

	diff := &cobra.Command{
		Use:     "diff <from> <to>",
		Short:   "Whole months from one key to another",
		Example: "  debtcalc months diff 2024-11 2025-02",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range args {
				if !monthkey.IsValid(k) {
					return fmt.Errorf("invalid month key %q", k)
				}
			}
			n := monthkey.Diff(args[0], args[1])
			return opts.print(cmd.OutOrStdout(), map[string]int{"months": n}, strconv.Itoa(n))
		},
	}

	shift := func(use, short string, fn func(string) string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <key>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if !monthkey.IsValid(args[0]) {
					return fmt.Errorf("invalid month key %q", args[0])
				}
				key := fn(args[0])
				return opts.print(cmd.OutOrStdout(), map[string]string{"key": key}, key)
			},
		}
	}

	cmd.AddCommand(
		diff,
		shift("next", "The month after key", monthkey.Next),
		shift("prev", "The month before key", monthkey.Prev),
	)
	return cmd
}
