package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"

	"github.com/yurifrl/lunchsync/pkg/models"
)

const (
	AppName  = "lunchsync-sg"
	FileName = "config.json"

	envLunchMoneyKey = "LUNCHMONEY_API_KEY"
	envLunchMoneyMap = "LUNCHMONEY_ACCOUNT_MAP"
	envYNABToken     = "YNAB_TOKEN"
	envYNABBudget    = "YNAB_BUDGET_ID"
)

type Config struct {
	Accounts   []Account        `mapstructure:"accounts" json:"accounts" yaml:"accounts"`
	LunchMoney LunchMoneyConfig `mapstructure:"lunch_money" json:"lunch_money" yaml:"lunch_money"`
	YNAB       YNABConfig       `mapstructure:"ynab" json:"ynab" yaml:"ynab"`

	path string
}

// Account is a configured card or bank account. Older config files use
// card_number instead of identifier.
type Account struct {
	Identifier string `mapstructure:"identifier" json:"identifier" yaml:"identifier"`
	CardNumber string `mapstructure:"card_number" json:"card_number,omitempty" yaml:"card_number,omitempty"`
	Name       string `mapstructure:"name" json:"name" yaml:"name"`
	Bank       string `mapstructure:"bank" json:"bank" yaml:"bank"`
	Type       string `mapstructure:"type" json:"type" yaml:"type"`
}

func (a Account) ID() string {
	if a.Identifier != "" {
		return a.Identifier
	}
	return a.CardNumber
}

type LunchMoneyConfig struct {
	APIKey         string           `mapstructure:"api_key" json:"api_key,omitempty" yaml:"api_key,omitempty"`
	AccountMapping map[string]int64 `mapstructure:"account_mapping" json:"account_mapping,omitempty" yaml:"account_mapping,omitempty"`
}

type YNABConfig struct {
	Token          string            `mapstructure:"token" json:"token,omitempty" yaml:"token,omitempty"`
	BudgetID       string            `mapstructure:"budget_id" json:"budget_id,omitempty" yaml:"budget_id,omitempty"`
	AccountMapping map[string]string `mapstructure:"account_mapping" json:"account_mapping,omitempty" yaml:"account_mapping,omitempty"`
}

// Dir is $XDG_CONFIG_HOME/lunchsync-sg, defaulting to ~/.config/lunchsync-sg.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName)
}

// DefaultPath is where setup writes a new config.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Build loads the config file (explicit path, ./config.json or the user
// config dir), then applies .env, environment and flag overrides. A missing
// config file is not an error unless cfgFile was given.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetConfigType("json")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.AddConfigPath(".")
		if dir := Dir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	_ = v.BindEnv("lunch_money.api_key", envLunchMoneyKey)
	_ = v.BindEnv("ynab.token", envYNABToken)
	_ = v.BindEnv("ynab.budget_id", envYNABBudget)
	if flags != nil {
		for key, name := range map[string]string{
			"lunch_money.api_key": "lm-api-key",
			"ynab.token":          "ynab-token",
			"ynab.budget_id":      "ynab-budget",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = v.ConfigFileUsed()

	if raw := os.Getenv(envLunchMoneyMap); raw != "" {
		extra, err := parseAccountMap(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", envLunchMoneyMap, err)
		}
		if cfg.LunchMoney.AccountMapping == nil {
			cfg.LunchMoney.AccountMapping = make(map[string]int64, len(extra))
		}
		for name, id := range extra {
			cfg.LunchMoney.AccountMapping[name] = id
		}
	}
	return &cfg, nil
}

// parseAccountMap reads "Name One=123|Name Two=456".
func parseAccountMap(raw string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, pair := range strings.Split(raw, "|") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, id, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q, want name=id", pair)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid asset id in %q: %w", pair, err)
		}
		out[strings.TrimSpace(name)] = n
	}
	return out, nil
}

// Path is the file the config was loaded from, empty when none was found.
func (c *Config) Path() string { return c.path }

// Mappings returns the configured accounts for label resolution.
func (c *Config) Mappings() models.AccountMappings {
	out := make(models.AccountMappings, 0, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID() == "" {
			continue
		}
		out = append(out, models.AccountMapping{
			Identifier: a.ID(),
			Name:       a.Name,
			Bank:       a.Bank,
			Type:       a.Type,
		})
	}
	return out
}

// Label normalizes an account label for lookups. Config keys are case
// insensitive because viper lower-cases map keys.
func Label(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LunchMoneyAssets maps normalized account labels to Lunch Money asset ids.
func (c *Config) LunchMoneyAssets() map[string]string {
	out := make(map[string]string, len(c.LunchMoney.AccountMapping))
	for name, id := range c.LunchMoney.AccountMapping {
		out[Label(name)] = strconv.FormatInt(id, 10)
	}
	return out
}

// YNABAccounts maps normalized account labels to YNAB account ids.
func (c *Config) YNABAccounts() map[string]string {
	out := make(map[string]string, len(c.YNAB.AccountMapping))
	for name, id := range c.YNAB.AccountMapping {
		out[Label(name)] = id
	}
	return out
}

// Save writes the config as indented JSON, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	c.path = path
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	out.LunchMoney.APIKey = mask(c.LunchMoney.APIKey)
	out.YNAB.Token = mask(c.YNAB.Token)
	out.Accounts = make([]Account, len(c.Accounts))
	for i, a := range c.Accounts {
		a.Identifier = models.MaskCardNumber(a.ID())
		a.CardNumber = ""
		out.Accounts[i] = a
	}
	return out
}

// YAML renders the redacted config for display.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
