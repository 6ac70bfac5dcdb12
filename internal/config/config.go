// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone          = "America/Toronto"
	defaultCompleteWeeksCron = "5 * * * *"
	defaultDigestCron        = "0 9 * * *"
	defaultEmailRegion       = "ca-central-1"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type EmailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
	Sender  string `yaml:"sender"`
}

type JobsConfig struct {
	CompleteWeeksCron string `yaml:"complete_weeks_cron"`
	DigestCron        string `yaml:"digest_cron"`
	// Days before a play date the weekly digest goes out.
	DigestLeadDays int `yaml:"digest_lead_days"`
}

// Secrets are never read from the YAML file.
type Secrets struct {
	AppSecretKey       string `envconfig:"APP_SECRET_KEY"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Timezone    string `yaml:"timezone"`
		// Read client IPs from proxy headers when rate limiting.
		TrustProxy  bool   `yaml:"trust_proxy"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	Jobs     JobsConfig     `yaml:"jobs"`

	Secrets Secrets `yaml:"-"`

	location *time.Location
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a Config from YAML bytes, overlays secrets from OFSL_* environment
// variables, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := envconfig.Process("ofsl", &cfg.Secrets); err != nil {
		return nil, fmt.Errorf("error loading secrets from environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.App.Environment) == "" {
		c.App.Environment = "development"
	}
	if strings.TrimSpace(c.App.Timezone) == "" {
		c.App.Timezone = defaultTimezone
	}
	if strings.TrimSpace(c.Email.Region) == "" {
		c.Email.Region = defaultEmailRegion
	}
	if strings.TrimSpace(c.Jobs.CompleteWeeksCron) == "" {
		c.Jobs.CompleteWeeksCron = defaultCompleteWeeksCron
	}
	if strings.TrimSpace(c.Jobs.DigestCron) == "" {
		c.Jobs.DigestCron = defaultDigestCron
	}
	if c.Jobs.DigestLeadDays <= 0 {
		c.Jobs.DigestLeadDays = 2
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}
	c.location = loc

	if c.Email.Enabled {
		if c.Email.Sender == "" {
			return fmt.Errorf("email sender is required when email is enabled")
		}
		if c.Secrets.AWSAccessKeyID == "" || c.Secrets.AWSSecretAccessKey == "" {
			return fmt.Errorf("aws credentials are required when email is enabled")
		}
	}

	for name, expr := range map[string]string{
		"complete_weeks_cron": c.Jobs.CompleteWeeksCron,
		"digest_cron":         c.Jobs.DigestCron,
	} {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, expr, err)
		}
	}

	return nil
}

// Location is the league timezone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.Local
	}
	return c.location
}
