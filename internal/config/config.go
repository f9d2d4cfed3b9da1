package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bankpush/bankpush/internal/accounts"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "bankpush.yaml"

// Config represents the top-level bankpush.yaml configuration.
type Config struct {
	YNAB     YNABConfig     `yaml:"ynab"`
	Accounts AccountsConfig `yaml:"accounts"`
	Server   ServerConfig   `yaml:"server"`
}

// YNABConfig controls the budgeting API client.
type YNABConfig struct {
	BaseURL      string        `yaml:"base_url"`
	BudgetID     string        `yaml:"budget_id"`
	AccessToken  string        `yaml:"access_token,omitempty"`
	VerifySSL    bool          `yaml:"verify_ssl"`
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Pacing       time.Duration `yaml:"pacing"`
}

// AccountsConfig maps export filename prefixes to account IDs.
type AccountsConfig struct {
	Default Account `yaml:"default"`
	Shared  Account `yaml:"shared"`
	Second  Account `yaml:"second"`
}

// Account is one budget account.
type Account struct {
	Prefix string `yaml:"prefix"`
	ID     string `yaml:"id"`
}

// ServerConfig controls the upload service.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	UploadsPerMin  int           `yaml:"uploads_per_minute"`
	MaxOperations  int           `yaml:"max_operations"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Default returns a Config with sensible defaults and no credentials.
func Default() *Config {
	return &Config{
		YNAB: YNABConfig{
			BaseURL:      "https://api.ynab.com/v1",
			VerifySSL:    true,
			MaxAttempts:  5,
			InitialDelay: 2 * time.Second,
			Pacing:       time.Second,
		},
		Accounts: AccountsConfig{
			Default: Account{Prefix: "Lourenco"},
			Shared:  Account{Prefix: "Sharedexpenses"},
			Second:  Account{Prefix: "Louise"},
		},
		Server: ServerConfig{
			Addr:           ":5000",
			MaxUploadBytes: 10 << 20,
			UploadsPerMin:  5,
			MaxOperations:  1000,
			WriteTimeout:   10 * time.Minute,
		},
	}
}

// Load reads path over the defaults and then applies the environment. A
// missing file is not an error when optional is true.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// envAliases maps a setting to the older variable names still accepted
// for it. The primary name wins when both are set.
var envAliases = map[string][]string{
	"YNAB_DEFAULT_ACCOUNT_ID": {"YNAB_LOURENCO_ACCOUNT_ID"},
	"YNAB_SECOND_ACCOUNT_ID":  {"YNAB_LOUISE_ACCOUNT_ID"},
	"PORT":                    {"FLASK_PORT"},
}

// lookupEnv returns the first non-empty value of key or one of its aliases.
func lookupEnv(lookup func(string) (string, bool), key string) (string, bool) {
	for _, k := range append([]string{key}, envAliases[key]...) {
		if v, ok := lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"YNAB_BASE_URL":           &c.YNAB.BaseURL,
		"YNAB_BUDGET_ID":          &c.YNAB.BudgetID,
		"YNAB_ACCESS_TOKEN":       &c.YNAB.AccessToken,
		"YNAB_DEFAULT_ACCOUNT_ID": &c.Accounts.Default.ID,
		"YNAB_SHARED_ACCOUNT_ID":  &c.Accounts.Shared.ID,
		"YNAB_SECOND_ACCOUNT_ID":  &c.Accounts.Second.ID,
	}
	for key, dst := range strs {
		if v, ok := lookupEnv(lookup, key); ok {
			*dst = v
		}
	}

	if v, ok := lookupEnv(lookup, "VERIFY_SSL"); ok {
		c.YNAB.VerifySSL = strings.EqualFold(v, "true")
	}
	if v, ok := lookupEnv(lookup, "PORT"); ok {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Addr = ":" + v
	}
	return nil
}

// Validate reports every missing required setting.
func (c *Config) Validate() error {
	var missing []string
	if c.YNAB.BudgetID == "" {
		missing = append(missing, "YNAB_BUDGET_ID")
	}
	if c.YNAB.AccessToken == "" {
		missing = append(missing, "YNAB_ACCESS_TOKEN")
	}
	if c.Accounts.Default.ID == "" {
		missing = append(missing, "YNAB_DEFAULT_ACCOUNT_ID")
	}
	if c.Accounts.Shared.ID == "" {
		missing = append(missing, "YNAB_SHARED_ACCOUNT_ID")
	}
	if c.Accounts.Second.ID == "" {
		missing = append(missing, "YNAB_SECOND_ACCOUNT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Router builds the filename-to-account router.
func (c *Config) Router() *accounts.Router {
	return accounts.NewRouter(
		accounts.Account{Name: "default", Prefix: c.Accounts.Default.Prefix, ID: c.Accounts.Default.ID},
		accounts.Account{Name: "shared", Prefix: c.Accounts.Shared.Prefix, ID: c.Accounts.Shared.ID},
		accounts.Account{Name: "second", Prefix: c.Accounts.Second.Prefix, ID: c.Accounts.Second.ID},
	)
}
