package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MailConfig holds the SMTP account used for verification codes and
// digests. When nil, mail features are disabled.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Config keeps runtime settings for the planner.
type Config struct {
	Listen        string      `yaml:"listen"`
	DatabaseURL   string      `yaml:"database_url"`
	SessionSecret string      `yaml:"session_secret"`
	LogLevel      string      `yaml:"log_level"`
	DigestTime    string      `yaml:"digest_time"` // "HH:MM"; empty disables the digest job
	PurgeMinutes  int         `yaml:"purge_interval_minutes"`
	Mail          *MailConfig `yaml:"mail,omitempty"`

	// PurgeInterval is derived from PurgeMinutes; the verification-code
	// purge cadence.
	PurgeInterval time.Duration `yaml:"-"`
}

// Default returns the in-memory default configuration.
func Default() Config {
	return Config{
		Listen:       "127.0.0.1:8080",
		DatabaseURL:  "task_planner.db",
		LogLevel:     "info",
		PurgeMinutes: 60,
	}
}

// Load builds the configuration from an optional YAML file, a .env file if
// present, and environment variables, in increasing order of precedence.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if cfg.PurgeMinutes > 0 {
		cfg.PurgeInterval = time.Duration(cfg.PurgeMinutes) * time.Minute
	}

	if cfg.SessionSecret == "" {
		return cfg, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("PLANNER_LISTEN")); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SESSION_SECRET")); v != "" {
		cfg.SessionSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("DIGEST_TIME")); v != "" {
		cfg.DigestTime = v
	}
	if v := strings.TrimSpace(os.Getenv("PURGE_INTERVAL_MINUTES")); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.PurgeMinutes = minutes
		}
	}

	if host := strings.TrimSpace(os.Getenv("SMTP_HOST")); host != "" {
		mailCfg := cfg.Mail
		if mailCfg == nil {
			mailCfg = &MailConfig{Port: 587}
		}
		mailCfg.Host = host
		if v := strings.TrimSpace(os.Getenv("SMTP_PORT")); v != "" {
			if port, err := strconv.Atoi(v); err == nil {
				mailCfg.Port = port
			}
		}
		if v := strings.TrimSpace(os.Getenv("SMTP_USERNAME")); v != "" {
			mailCfg.Username = v
		}
		if v := strings.TrimSpace(os.Getenv("SMTP_PASSWORD")); v != "" {
			mailCfg.Password = v
		}
		if v := strings.TrimSpace(os.Getenv("SMTP_FROM")); v != "" {
			mailCfg.From = v
		}
		if mailCfg.From == "" {
			mailCfg.From = mailCfg.Username
		}
		cfg.Mail = mailCfg
	}
}
