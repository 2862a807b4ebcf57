package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file at the project root.
const FileName = "pennywyse.yaml"

// EnvPrefix prefixes environment overrides: PENNYWYSE_LEDGER_PATH etc.
const EnvPrefix = "PENNYWYSE"

// Config represents the top-level pennywyse.yaml configuration.
type Config struct {
	Profile    ProfileConfig    `yaml:"profile" mapstructure:"profile"`
	Ledger     LedgerConfig     `yaml:"ledger" mapstructure:"ledger"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Dedupe     DedupeConfig     `yaml:"dedupe" mapstructure:"dedupe"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Git        GitConfig        `yaml:"git" mapstructure:"git"`
}

// ProfileConfig identifies whose money this is.
type ProfileConfig struct {
	Name     string `yaml:"name" mapstructure:"name"`
	Currency string `yaml:"currency" mapstructure:"currency"`
}

type LedgerConfig struct {
	Path        string        `yaml:"path" mapstructure:"path"`
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

type CategoriesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ImportConfig controls statement intake.
type ImportConfig struct {
	Inbox      string `yaml:"inbox" mapstructure:"inbox"`
	DateLayout string `yaml:"date_layout" mapstructure:"date_layout"` // Go layout, e.g. 02/01/2006
}

type DedupeConfig struct {
	Strictness string `yaml:"strictness" mapstructure:"strictness"` // strict | lenient
}

// ExtractionConfig configures the AI document parser. The key itself is
// never stored here, only the name of the variable holding it.
type ExtractionConfig struct {
	Model     string        `yaml:"model" mapstructure:"model"`
	APIKeyEnv string        `yaml:"api_key_env" mapstructure:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Mode string `yaml:"mode" mapstructure:"mode"` // gin mode: debug | release | test
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console | json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	AuthorName  string `yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`
}

// Load reads a pennywyse.yaml file from disk. Keys missing from the file
// keep their Default values; PENNYWYSE_* environment variables override both.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	defaults, err := yaml.Marshal(Default(""))
	if err != nil {
		return nil, fmt.Errorf("marshaling defaults: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("reading defaults: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(name string) *Config {
	return &Config{
		Profile: ProfileConfig{
			Name:     name,
			Currency: "INR",
		},
		Ledger:     LedgerConfig{Path: "ledger/transactions.csv", LockTimeout: 30 * time.Second},
		Categories: CategoriesConfig{Path: "categories/categories.csv"},
		Import: ImportConfig{
			Inbox:      "inbox",
			DateLayout: "02/01/2006",
		},
		Dedupe: DedupeConfig{Strictness: "strict"},
		Extraction: ExtractionConfig{
			Model:     "gemini-1.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "pennywyse",
			AuthorEmail: "pennywyse@localhost",
		},
	}
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Dedupe.Strictness {
	case "strict", "lenient":
	default:
		return fmt.Errorf("config: dedupe.strictness must be strict or lenient, got %q", c.Dedupe.Strictness)
	}
	if strings.TrimSpace(c.Import.DateLayout) == "" {
		return fmt.Errorf("config: import.date_layout is empty")
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("config: ledger.path is empty")
	}
	if c.Ledger.LockTimeout <= 0 {
		return fmt.Errorf("config: ledger.lock_timeout must be positive")
	}
	if c.Extraction.Timeout <= 0 {
		return fmt.Errorf("config: extraction.timeout must be positive")
	}
	return nil
}

// APIKey returns the extraction API key from the environment.
func (c *Config) APIKey() string {
	if c.Extraction.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Extraction.APIKeyEnv)
}

// Resolve joins a configured path onto root unless it is already absolute.
func Resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
