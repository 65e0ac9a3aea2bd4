// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full process configuration.
type Config struct {
	Env      string
	HTTPAddr string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	RunMigrations bool

	RedisHost     string
	RedisPort     string
	RedisPassword string
	CacheTTL      time.Duration

	IdentityAPIURL        string
	IdentitySecretKey     string
	IdentityWebhookSecret string
	IdentityTimeout       time.Duration
	IdentityDevUsersFile  string

	SessionSecret       string
	SyncDefaultRedirect string
}

// IsDevelopment reports whether the process runs in a local development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "local"
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// Load reads the configuration from environment variables, applying defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("IDENTITY_TIMEOUT", "10s")
	v.SetDefault("SYNC_DEFAULT_REDIRECT", "/")

	cfg := &Config{
		Env:      v.GetString("APP_ENV"),
		HTTPAddr: v.GetString("HTTP_ADDR"),

		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		IdentityAPIURL:        strings.TrimRight(v.GetString("IDENTITY_API_URL"), "/"),
		IdentitySecretKey:     v.GetString("IDENTITY_SECRET_KEY"),
		IdentityWebhookSecret: v.GetString("IDENTITY_WEBHOOK_SECRET"),
		IdentityTimeout:       v.GetDuration("IDENTITY_TIMEOUT"),
		IdentityDevUsersFile:  v.GetString("IDENTITY_DEV_USERS_FILE"),

		SessionSecret:       v.GetString("SESSION_SECRET"),
		SyncDefaultRedirect: v.GetString("SYNC_DEFAULT_REDIRECT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate reports every missing required setting at once.
func (c *Config) validate() error {
	var missing []string
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.IdentityWebhookSecret == "" {
		missing = append(missing, "IDENTITY_WEBHOOK_SECRET")
	}
	if !c.IsDevelopment() {
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
		if c.DBName == "" {
			missing = append(missing, "DB_NAME")
		}
		if c.IdentityAPIURL == "" {
			missing = append(missing, "IDENTITY_API_URL")
		}
		if c.IdentitySecretKey == "" {
			missing = append(missing, "IDENTITY_SECRET_KEY")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.CacheTTL <= 0 {
		return errors.New("config: CACHE_TTL must be positive")
	}
	if !strings.HasPrefix(c.SyncDefaultRedirect, "/") {
		return errors.New("config: SYNC_DEFAULT_REDIRECT must be a local path")
	}
	return nil
}
