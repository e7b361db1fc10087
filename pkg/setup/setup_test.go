package setup

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/parser"
)

func copyFixture(t *testing.T, dir, name, as string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "parser", "testdata", name))
	require.NoError(t, err)
	path := filepath.Join(dir, as)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, dir, "ocbc_credit.csv", "a_ocbc.csv")
	copyFixture(t, dir, "ocbc_credit.csv", "b_ocbc_again.csv")
	copyFixture(t, dir, "citi_rewards.csv", "c_citi.csv")
	copyFixture(t, dir, "random.csv", "d_random.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	single := copyFixture(t, t.TempDir(), "dbs_savings.csv", "dbs.csv")

	logger := log.New(io.Discard)
	got := Scan(parser.DefaultRegistry(logger), logger, []string{dir, single, filepath.Join(dir, "missing")})

	require.Len(t, got, 3)
	assert.Equal(t, "1234-5678-9012-3456", got[0].CardNumber)
	assert.Equal(t, "OCBC", got[0].Bank)
	assert.Equal(t, "5424180012345678", got[1].CardNumber)
	assert.Equal(t, "123-4-567890", got[2].CardNumber)
}

func TestName(t *testing.T) {
	assert.Equal(t, "OCBC Credit Card ****3456", Name(models.DetectedAccount{CardNumber: "1234-5678-9012-3456", DisplayHint: "OCBC Credit Card"}))
	assert.Equal(t, "HSBC Revolution 3363", Name(models.DetectedAccount{CardNumber: "3363", DisplayHint: "HSBC Revolution"}))
}

func TestMerge(t *testing.T) {
	cfg := &config.Config{Accounts: []config.Account{
		{CardNumber: "3456", Name: "Shared Card", Bank: "OCBC", Type: parser.CreditCard},
	}}
	detected := []models.DetectedAccount{
		{CardNumber: "1234-5678-9012-3456", Bank: "OCBC", AccountType: parser.CreditCard, DisplayHint: "OCBC Credit Card"},
		{CardNumber: "123-4-567890", Bank: "DBS", AccountType: parser.Savings, DisplayHint: "DBS Savings"},
	}

	added := Merge(cfg, detected)
	require.Len(t, added, 1)
	assert.Equal(t, config.Account{
		Identifier: "123-4-567890",
		Name:       "DBS Savings ****7890",
		Bank:       "DBS",
		Type:       parser.Savings,
	}, added[0])

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "Shared Card", cfg.Accounts[0].Name)

	assert.Empty(t, Merge(cfg, detected))
}
