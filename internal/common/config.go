// Package common provides shared utilities for Premia
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for Premia
type Config struct {
	Environment string         `toml:"environment" yaml:"environment"`
	Server      ServerConfig   `toml:"server" yaml:"server"`
	Backend     BackendConfig  `toml:"backend" yaml:"backend"`
	Income      IncomeConfig   `toml:"income" yaml:"income"`
	Monitor     MonitorConfig  `toml:"monitor" yaml:"monitor"`
	Storage     StorageConfig  `toml:"storage" yaml:"storage"`
	Telegram    TelegramConfig `toml:"telegram" yaml:"telegram"`
	Auth        AuthConfig     `toml:"auth" yaml:"auth"`
	Logging     LoggingConfig  `toml:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`
}

// BackendConfig holds the finance backend API configuration.
// Headers are sent verbatim on every backend request.
type BackendConfig struct {
	BaseURL   string            `toml:"base_url" yaml:"base_url"`
	APIKey    string            `toml:"api_key" yaml:"api_key"`
	Headers   map[string]string `toml:"headers" yaml:"headers"`
	RateLimit int               `toml:"rate_limit" yaml:"rate_limit"`
	Timeout   string            `toml:"timeout" yaml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BackendConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IncomeConfig holds the starting premium assumptions for a session.
type IncomeConfig struct {
	DefaultPremium float64 `toml:"default_premium" yaml:"default_premium"`
	Delta          int     `toml:"delta" yaml:"delta"`
	WeeksPerYear   int     `toml:"weeks_per_year" yaml:"weeks_per_year"`
}

// MonitorConfig holds roll monitor defaults.
type MonitorConfig struct {
	ProfitThresholdPct float64 `toml:"profit_threshold_pct" yaml:"profit_threshold_pct"`
	UseLivePrices      bool    `toml:"use_live_prices" yaml:"use_live_prices"`
	AlertHistoryLimit  int     `toml:"alert_history_limit" yaml:"alert_history_limit"`
}

// StorageConfig holds session storage configuration. An empty path keeps
// everything in memory for the lifetime of the process.
type StorageConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// InMemory reports whether the session store should avoid disk entirely.
func (c StorageConfig) InMemory() bool {
	return strings.TrimSpace(c.Path) == ""
}

// TelegramConfig holds optional roll alert notification settings.
type TelegramConfig struct {
	Enabled  bool   `toml:"enabled" yaml:"enabled"`
	BotToken string `toml:"bot_token" yaml:"bot_token"`
	ChatID   int64  `toml:"chat_id" yaml:"chat_id"`
}

// AuthConfig holds the dashboard login gate. The gate is off when PasswordHash is empty.
type AuthConfig struct {
	Username     string `toml:"username" yaml:"username"`
	PasswordHash string `toml:"password_hash" yaml:"password_hash"` // bcrypt
	JWTSecret    string `toml:"jwt_secret" yaml:"jwt_secret"`
	TokenExpiry  string `toml:"token_expiry" yaml:"token_expiry"` // duration string, default "24h"
}

// Enabled reports whether requests must carry a valid bearer token.
func (c *AuthConfig) Enabled() bool {
	return c.PasswordHash != ""
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL:   "http://localhost:8000",
			RateLimit: 10,
			Timeout:   "30s",
		},
		Income: IncomeConfig{
			DefaultPremium: 60,
			Delta:          10,
			WeeksPerYear:   50,
		},
		Monitor: MonitorConfig{
			ProfitThresholdPct: 80,
			UseLivePrices:      true,
			AlertHistoryLimit:  20,
		},
		Auth: AuthConfig{
			Username:    "family",
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Files ending in .yaml or .yml are parsed as YAML, everything else as TOML.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PREMIA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("PREMIA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("PREMIA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("PREMIA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("PREMIA_BACKEND_URL"); v != "" {
		config.Backend.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("PREMIA_BACKEND_API_KEY"); v != "" {
		config.Backend.APIKey = v
	}

	if v := os.Getenv("PREMIA_STORAGE_PATH"); v != "" {
		config.Storage.Path = v
	}

	if v := os.Getenv("PREMIA_PROFIT_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Monitor.ProfitThresholdPct = f
		}
	}

	// Telegram overrides
	if v := os.Getenv("PREMIA_TELEGRAM_BOT_TOKEN"); v != "" {
		config.Telegram.BotToken = v
		config.Telegram.Enabled = true
	}
	if v := os.Getenv("PREMIA_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	// Auth overrides
	if v := os.Getenv("PREMIA_AUTH_USERNAME"); v != "" {
		config.Auth.Username = v
	}
	if v := os.Getenv("PREMIA_AUTH_PASSWORD_HASH"); v != "" {
		config.Auth.PasswordHash = v
	}
	if v := os.Getenv("PREMIA_AUTH_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("PREMIA_AUTH_TOKEN_EXPIRY"); v != "" {
		config.Auth.TokenExpiry = v
	}
}

// Validate checks values the services cannot recover from.
func (c *Config) Validate() error {
	if c.Income.WeeksPerYear < 1 || c.Income.WeeksPerYear > 52 {
		return fmt.Errorf("income.weeks_per_year must be between 1 and 52, got %d", c.Income.WeeksPerYear)
	}
	if c.Income.DefaultPremium < 0 {
		return fmt.Errorf("income.default_premium must not be negative, got %v", c.Income.DefaultPremium)
	}
	if c.Monitor.ProfitThresholdPct <= 0 {
		return fmt.Errorf("monitor.profit_threshold_pct must be positive, got %v", c.Monitor.ProfitThresholdPct)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram is enabled but bot_token or chat_id is missing")
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
