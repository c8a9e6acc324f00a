package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBaselineCommand(t *testing.T) {
	out, err := run(t, "baseline", "--initial", "1200", "--payment", "100", "--first", "2025-01-01", "--now", "2025-06-15")
	require.NoError(t, err)
	assert.Contains(t, out, "payments scheduled: 6")
	assert.Contains(t, out, "current balance:    600.00")
}

func TestBaselineCommand_JSON(t *testing.T) {
	out, err := run(t, "baseline", "--json", "--initial", "1200", "--payment", "100", "--first", "01/01/2025", "--now", "2025-06-15")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "600", got["computedCurrentBalance"])
}

func TestBaselineCommand_Errors(t *testing.T) {
	_, err := run(t, "baseline", "--initial", "1200", "--payment", "100", "--first", "31/02/2026")
	assert.EqualError(t, err, "Invalid firstPaymentDate")

	_, err = run(t, "baseline", "--initial", "lots", "--payment", "100", "--first", "2025-01-01")
	assert.ErrorContains(t, err, "invalid --initial")

	_, err = run(t, "baseline", "--initial", "1200", "--payment", "100")
	assert.Error(t, err)
}

func TestInstallmentCommand(t *testing.T) {
	out, err := run(t, "installment", "--balance", "600", "--months", "12", "--minimum", "60")
	require.NoError(t, err)
	assert.Equal(t, "60.00\n", out)

	out, err = run(t, "installment", "--balance", "600", "--months", "0")
	require.NoError(t, err)
	assert.Equal(t, "0.00\n", out)
}

func TestMonthsCommands(t *testing.T) {
	out, err := run(t, "months", "diff", "2024-11", "2025-02")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	out, err = run(t, "months", "next", "2024-12")
	require.NoError(t, err)
	assert.Equal(t, "2025-01\n", out)

	out, err = run(t, "months", "prev", "2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-12\n", out)

	_, err = run(t, "months", "next", "2025-13")
	assert.ErrorContains(t, err, "invalid month key")
}
