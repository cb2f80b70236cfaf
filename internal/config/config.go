// Package config loads service configuration from config.yaml, a .env file
// and BILLDESK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Issuance IssuanceConfig `mapstructure:"issuance" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Uploads  UploadsConfig  `mapstructure:"uploads" validate:"required"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// RateLimit is login/register attempts per minute per client.
	RateLimit int `mapstructure:"rate_limit" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver      string `mapstructure:"driver" validate:"oneof=sqlite postgres"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `mapstructure:"postgres_dsn" validate:"required_if=Driver postgres"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password" validate:"required_with=AdminUsername"`
	AdminName     string        `mapstructure:"admin_name"`
}

type IssuanceConfig struct {
	RenderTimeout     time.Duration `mapstructure:"render_timeout" validate:"gt=0"`
	EmailTimeout      time.Duration `mapstructure:"email_timeout" validate:"gt=0"`
	AllocationRetries int           `mapstructure:"allocation_retries" validate:"gte=0,lte=20"`
}

type RedisConfig struct {
	// Address enables the distributed bill number lock when set.
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type EmailConfig struct {
	Provider    string `mapstructure:"provider" validate:"oneof=resend smtp disabled"`
	FromAddress string `mapstructure:"from_address" validate:"omitempty,email"`
	ReplyTo     string `mapstructure:"reply_to" validate:"omitempty,email"`
	APIKey      string `mapstructure:"api_key" validate:"required_if=Provider resend"`
	SMTPHost    string `mapstructure:"smtp_host" validate:"required_if=Provider smtp"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	SMTPUser    string `mapstructure:"smtp_user"`
	SMTPPass    string `mapstructure:"smtp_pass"`
}

type UploadsConfig struct {
	Provider      string `mapstructure:"provider" validate:"oneof=local s3"`
	LocalDir      string `mapstructure:"local_dir" validate:"required_if=Provider local"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Bucket        string `mapstructure:"bucket" validate:"required_if=Provider s3"`
	Region        string `mapstructure:"region"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	MaxLogoBytes  int64  `mapstructure:"max_logo_bytes" validate:"gt=0"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.rate_limit", 10)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/billdesk.db")
	v.SetDefault("database.postgres_dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_username", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_name", "Administrator")

	v.SetDefault("issuance.render_timeout", 10*time.Second)
	v.SetDefault("issuance.email_timeout", 15*time.Second)
	v.SetDefault("issuance.allocation_retries", 5)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 30*time.Second)

	v.SetDefault("email.provider", "disabled")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.reply_to", "")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_pass", "")

	v.SetDefault("uploads.provider", "local")
	v.SetDefault("uploads.local_dir", "./data/uploads")
	v.SetDefault("uploads.public_base_url", "/uploads")
	v.SetDefault("uploads.bucket", "")
	v.SetDefault("uploads.region", "ap-south-1")
	v.SetDefault("uploads.key_prefix", "billdesk")
	v.SetDefault("uploads.max_logo_bytes", 2<<20)

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads configuration. configPaths overrides where config.yaml is
// searched for.
func Load(configPaths ...string) (*Configuration, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(configPaths) == 0 {
		configPaths = []string{".", "./config", "/etc/billdesk"}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("BILLDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		slog.Info("Using config file", "path", v.ConfigFileUsed())
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c Configuration) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
