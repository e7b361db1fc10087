package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/lunchsync/pkg/csv"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.Flags().VisitAll(reset)
	rootCmd.PersistentFlags().VisitAll(reset)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"accounts":[{"identifier":"3456","name":"Shared Card"}]}`), 0o600))
	return path
}

func fixture(name string) string {
	return filepath.Join("..", "..", "pkg", "parser", "testdata", name)
}

func TestConvert(t *testing.T) {
	out := filepath.Join(t.TempDir(), "transactions.csv")
	logs, err := execute(t, fixture("ocbc_credit.csv"), fixture("random.csv"), "-c", writeConfig(t), "-o", out)
	require.NoError(t, err)
	assert.Contains(t, logs, "3 transactions from 1/2 files")
	assert.Contains(t, logs, "skipped "+fixture("random.csv"))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "..", "pkg", "normalizer", "testdata", "golden.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestConvertDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "transactions.csv")
	logs, err := execute(t, fixture(""), "-c", writeConfig(t), "-o", out, "--full")
	require.NoError(t, err)
	assert.Contains(t, logs, "transactions from 7/8 files")

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "2026-01-14,PYMT @ AXS,500.00,Unknown (3363),SGD,,,\n")
	assert.Contains(t, string(got), "2026-01-26,AMAZON MKTPLACE,-13.50,Unknown (1234),USD,-10.00,,\n")
}

func TestConvertFiltersToStdout(t *testing.T) {
	out, err := execute(t, fixture("ocbc_credit.csv"), "-c", writeConfig(t), "-o", "-", "--format", "tsv", "--max", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "Date\tDescription\tAmount\tAccount\n")
	assert.Contains(t, out, "2026-01-30\tGROCERY STORE\t-300.00\tShared Card\n")
	assert.NotContains(t, out, "REFUND")
}

func TestConvertNothingParsed(t *testing.T) {
	_, err := execute(t, fixture("random.csv"), "-c", writeConfig(t), "-o", filepath.Join(t.TempDir(), "x.csv"))
	assert.Error(t, err)
}

func TestConvertUnknownFormat(t *testing.T) {
	_, err := execute(t, fixture("ocbc_credit.csv"), "-c", writeConfig(t), "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestUploadDryRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "accounts": [{"identifier": "3456", "name": "Shared Card"}],
  "lunch_money": {"account_mapping": {"Shared Card": 42}}
}`), 0o600))

	out, err := execute(t, fixture("ocbc_credit.csv"), "-c", path, "--upload-lunchmoney", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "asset 42")
	assert.Contains(t, out, "Plan: 3 transaction(s) will be uploaded")
}

func TestUploadRequiresMapping(t *testing.T) {
	_, err := execute(t, fixture("ocbc_credit.csv"), "-c", writeConfig(t), "--upload-ynab", "--dry-run")
	assert.ErrorContains(t, err, "no YNAB account mapping")
}

func TestListParsers(t *testing.T) {
	out, err := execute(t, "--list-parsers")
	require.NoError(t, err)
	assert.Contains(t, out, "OCBC Credit Card")
	assert.Contains(t, out, "Citibank Credit Card")
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "plan.yaml")
	abs, err := filepath.Abs(fixture("dbs_savings.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manifest, []byte("output: out.csv\nstatements:\n  - file: "+abs+"\n    account: Joint Savings\n"), 0o644))

	_, err = execute(t, "plan", manifest, "-c", writeConfig(t))
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(got), "Joint Savings")
	assert.NotContains(t, string(got), "DBS Savings")
}

func TestFilters(t *testing.T) {
	tx := func(day int, desc, amount string) models.Transaction {
		built, err := models.NewTransaction(time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC), desc, decimal.RequireFromString(amount)).Build()
		require.NoError(t, err)
		return built
	}
	txs := []models.Transaction{
		tx(5, "KOPITIAM", "-4.50"),
		tx(10, "SALARY", "5000"),
		tx(20, "GROCERY STORE", "-300"),
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, []string{"KOPITIAM", "SALARY", "GROCERY STORE"}},
		{"date range", []string{"--start", "2026-01-06", "--end", "2026-01-20"}, []string{"SALARY", "GROCERY STORE"}},
		{"inflows", []string{"--min", "0"}, []string{"SALARY"}},
		{"amount range", []string{"--min", "-10", "--max", "100"}, []string{"KOPITIAM"}},
		{"match", []string{"--match", "grocery"}, []string{"GROCERY STORE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f filters
			flags := pflag.NewFlagSet(tt.name, pflag.ContinueOnError)
			f.register(flags)
			require.NoError(t, flags.Parse(tt.args))

			keep, err := f.toFilterFunc(flags)
			require.NoError(t, err)

			var got []string
			for _, tx := range csv.Filter(txs, keep) {
				got = append(got, tx.Description())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFiltersRejectBadDate(t *testing.T) {
	f := filters{startDate: "2026/01/01"}
	_, err := f.toFilterFunc(pflag.NewFlagSet("x", pflag.ContinueOnError))
	assert.ErrorContains(t, err, "invalid --start")
}
