package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const sampleConfig = `{
  "accounts": [
    {"card_number": "1234-5678-9012-3456", "name": "OCBC Rewards", "bank": "OCBC", "type": "credit_card"},
    {"identifier": "687-123456-001", "name": "OCBC 360", "bank": "OCBC", "type": "savings"}
  ],
  "lunch_money": {
    "api_key": "file-key",
    "account_mapping": {"OCBC Rewards": 101}
  },
  "ynab": {
    "budget_id": "budget-1",
    "account_mapping": {"OCBC 360": "acc-360"}
  }
}`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))
	return path
}

func TestBuildFromFile(t *testing.T) {
	t.Setenv(envLunchMoneyKey, "")
	t.Setenv(envLunchMoneyMap, "")
	path := writeConfig(t)

	cfg, err := Build(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "1234-5678-9012-3456", cfg.Accounts[0].ID())
	assert.Equal(t, "file-key", cfg.LunchMoney.APIKey)
	assert.Equal(t, "budget-1", cfg.YNAB.BudgetID)

	mappings := cfg.Mappings()
	require.Len(t, mappings, 2)
	assert.Equal(t, "OCBC Rewards", mappings.Resolve(models.AccountRef{ID: "3456"}))

	assert.Equal(t, map[string]string{"ocbc rewards": "101"}, cfg.LunchMoneyAssets())
	assert.Equal(t, map[string]string{"ocbc 360": "acc-360"}, cfg.YNABAccounts())
}

func TestBuildOverrides(t *testing.T) {
	t.Setenv(envLunchMoneyKey, "env-key")
	t.Setenv(envLunchMoneyMap, "Citi Rewards=202| HSBC Revolution = 303 ")
	path := writeConfig(t)

	cfg, err := Build(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.LunchMoney.APIKey)
	assert.Equal(t, "202", cfg.LunchMoneyAssets()["citi rewards"])
	assert.Equal(t, "303", cfg.LunchMoneyAssets()["hsbc revolution"])

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("lm-api-key", "", "")
	require.NoError(t, flags.Parse([]string{"--lm-api-key", "flag-key"}))

	cfg, err = Build(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.LunchMoney.APIKey)
}

func TestBuildMissingFile(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err := Build("", nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Empty(t, cfg.Accounts)
}

func TestParseAccountMapRejectsGarbage(t *testing.T) {
	_, err := parseAccountMap("no-equals")
	assert.Error(t, err)
	_, err = parseAccountMap("Card=abc")
	assert.Error(t, err)
}

func TestSaveAndRedact(t *testing.T) {
	cfg := &Config{
		Accounts:   []Account{{Identifier: "1234-5678-9012-3456", Name: "OCBC Rewards", Bank: "OCBC", Type: "credit_card"}},
		LunchMoney: LunchMoneyConfig{APIKey: "secret-key-9876"},
	}
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, cfg.Save(path))
	assert.Equal(t, path, cfg.Path())

	loaded, err := Build(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.Accounts[0].Name, loaded.Accounts[0].Name)

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "****9876")
	assert.Contains(t, out, "****3456")
	assert.NotContains(t, out, "secret-key")
	assert.Equal(t, "secret-key-9876", cfg.LunchMoney.APIKey, "redaction must not touch the original")
}

func TestDirHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/lunchsync-sg", Dir())
	assert.Equal(t, "/tmp/xdg/lunchsync-sg/config.json", DefaultPath())
}
