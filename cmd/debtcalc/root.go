package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	asJSON bool
	now    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "debtcalc",
		Short:        "Debt amortization calculator",
		Long:         "Simulate agreement baselines, installment amounts and billing-month arithmetic offline.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	cmd.PersistentFlags().StringVar(&opts.now, "now", "", "Evaluation day, YYYY-MM-DD or RFC3339 (default today)")

	cmd.AddCommand(newBaselineCmd(opts), newInstallmentCmd(opts), newMonthsCmd(opts))
	return cmd
}

func (o *rootOptions) clock() (time.Time, error) {
	if o.now == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, o.now); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, o.now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q", o.now)
	}
	return t, nil
}

// print writes v as indented JSON, or text otherwise
func (o *rootOptions) print(w io.Writer, v any, text string) error {
	if !o.asJSON {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
