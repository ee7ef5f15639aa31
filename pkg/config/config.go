// Package config loads application configuration from a YAML file with
// environment variable fallback. A .env file in the working directory is
// honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Backend API
	APIBaseURL string `yaml:"api_base_url"`
	APITimeout int    `yaml:"api_timeout_seconds"`

	// OpenRouter (direct mode; empty routes generation through the backend)
	OpenRouterKey string `yaml:"openrouter_key"`
	DefaultModel  string `yaml:"default_model"`

	// Credential storage
	CredentialDir string `yaml:"credential_dir"`

	// Local automation log mirror (empty disables it)
	AuditDBPath string `yaml:"audit_db_path"`

	// Cache
	Cache CacheConfig `yaml:"cache"`

	// Posting rate limit, per minute. Zero disables client-side limiting.
	PostRateLimit int `yaml:"post_rate_limit"`
	PostRateBurst int `yaml:"post_rate_burst"`

	// Scheduler
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Observability
	MetricsAddr string `yaml:"metrics_addr"`
}

// CacheConfig holds Redis cache settings. An empty address disables the
// cache entirely.
type CacheConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the configured cache TTL.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// SchedulerConfig holds publishing loop settings.
type SchedulerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Schedule    string `yaml:"schedule"`
	AccountID   string `yaml:"account_id"`
	AgentID     string `yaml:"agent_id"`
	Concurrency int    `yaml:"concurrency"`
}

// LoadConfig loads configuration from a YAML file. A missing file is not
// an error; everything can come from the environment.
func LoadConfig(path string) (*Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = os.Getenv("POSTFLOW_API_URL")
	}
	if c.OpenRouterKey == "" {
		c.OpenRouterKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if c.DefaultModel == "" {
		c.DefaultModel = os.Getenv("POSTFLOW_DEFAULT_MODEL")
	}
	if c.CredentialDir == "" {
		c.CredentialDir = os.Getenv("POSTFLOW_CREDENTIAL_DIR")
	}
	if c.AuditDBPath == "" {
		c.AuditDBPath = os.Getenv("POSTFLOW_AUDIT_DB")
	}
	if c.Cache.Addr == "" {
		c.Cache.Addr = os.Getenv("POSTFLOW_REDIS_ADDR")
	}
	if c.Cache.Password == "" {
		c.Cache.Password = os.Getenv("POSTFLOW_REDIS_PASSWORD")
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = os.Getenv("POSTFLOW_METRICS_ADDR")
	}
	if c.PostRateLimit == 0 {
		c.PostRateLimit = envInt("POSTFLOW_POST_RATE_LIMIT")
	}
	if c.Scheduler.AccountID == "" {
		c.Scheduler.AccountID = os.Getenv("POSTFLOW_SCHEDULER_ACCOUNT_ID")
	}
}

func (c *Config) applyDefaults() {
	if c.APITimeout == 0 {
		c.APITimeout = 30
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 300
	}
	if c.PostRateBurst == 0 {
		c.PostRateBurst = 1
	}
	if c.Scheduler.Schedule == "" {
		c.Scheduler.Schedule = "* * * * *"
	}
	if c.Scheduler.Concurrency == 0 {
		c.Scheduler.Concurrency = 2
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APITimeout < 0 {
		return fmt.Errorf("api_timeout_seconds must not be negative")
	}
	if c.PostRateLimit < 0 {
		return fmt.Errorf("post_rate_limit must not be negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.AccountID == "" {
		return fmt.Errorf("scheduler.account_id is required when the scheduler is enabled")
	}
	return nil
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
