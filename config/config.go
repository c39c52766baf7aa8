package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Application
	AppEnv         string `envconfig:"APP_ENV" default:"development"`
	AppPort        string `envconfig:"APP_PORT" default:"5200"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Security
	ServiceToken     string        `envconfig:"SERVICE_TOKEN" required:"true"`
	JWTSecret        string        `envconfig:"JWT_SECRET" required:"true"`
	ImpersonationTTL time.Duration `envconfig:"IMPERSONATION_TTL" default:"30m"`

	// Outbound
	MakeWebhookURL      string        `envconfig:"MAKE_WEBHOOK_URL"`
	WebhookPollInterval time.Duration `envconfig:"WEBHOOK_POLL_INTERVAL" default:"10s"`

	// Cache
	RedisURL       string        `envconfig:"REDIS_URL"`
	RewardCacheTTL time.Duration `envconfig:"REWARD_CACHE_TTL" default:"5m"`

	// R2 (health exports)
	CloudflareAccountID string `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `envconfig:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `envconfig:"R2_ACCESS_KEY_SECRET"`
	R2BucketName        string `envconfig:"R2_BUCKET_NAME"`
	CDNBaseURL          string `envconfig:"CDN_BASE_URL"`

	// Jobs
	BanSweepInterval    time.Duration `envconfig:"BAN_SWEEP_INTERVAL" default:"5m"`
	AnomalyScanInterval time.Duration `envconfig:"ANOMALY_SCAN_INTERVAL" default:"15m"`

	// Search
	SearchDefaultLimit int `envconfig:"SEARCH_DEFAULT_LIMIT" default:"50"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ServiceToken == "" {
		return fmt.Errorf("SERVICE_TOKEN is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.SearchDefaultLimit <= 0 || c.SearchDefaultLimit > 200 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and 200")
	}
	if c.ImpersonationTTL <= 0 {
		return fmt.Errorf("IMPERSONATION_TTL must be positive")
	}
	return nil
}

func (c *Config) ValidateProductionSecurity() error {
	if c.AppEnv != "production" {
		return nil
	}
	if !strings.Contains(c.DatabaseURL, "sslmode=require") {
		return fmt.Errorf("DATABASE_URL must use sslmode=require in production")
	}
	if strings.Contains(c.AllowedOrigins, "localhost") {
		return fmt.Errorf("ALLOWED_ORIGINS must not include localhost in production")
	}
	return nil
}

// Origins returns ALLOWED_ORIGINS trimmed and re-joined for the CORS middleware.
func (c *Config) Origins() string {
	parts := strings.Split(c.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2BucketName != "" && c.R2AccessKeyID != ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
