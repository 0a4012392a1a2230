package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Platform PlatformConfig
	Paystack PaystackConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// PlatformConfig holds marketplace fee and account settings
type PlatformConfig struct {
	// FeeEnabled toggles the platform cut on escrow release. When off the
	// seller receives the full sale amount.
	FeeEnabled bool
	// FeeRate is the fraction of a sale kept by the platform (0.05 = 5%).
	FeeRate decimal.Decimal
	// WithdrawalFeeRate is the fraction charged on payouts.
	WithdrawalFeeRate decimal.Decimal
	// WithdrawalFeeMin is the payout fee floor.
	WithdrawalFeeMin decimal.Decimal
	// AccountEmail identifies the user whose wallet collects platform fees.
	AccountEmail string
	// HoldAlertAge flags escrow holds older than this on the dashboard.
	HoldAlertAge time.Duration
}

// EffectiveFeeRate returns the fee rate honoring the enable flag
func (p PlatformConfig) EffectiveFeeRate() decimal.Decimal {
	if !p.FeeEnabled {
		return decimal.Zero
	}
	return p.FeeRate
}

// PaystackConfig holds payment gateway settings
type PaystackConfig struct {
	SecretKey string
	BaseURL   string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "campus_market"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Platform: PlatformConfig{
			FeeEnabled:        getEnvAsBool("PLATFORM_FEE_ENABLED", true),
			FeeRate:           getEnvAsDecimal("PLATFORM_FEE_RATE", "0.05"),
			WithdrawalFeeRate: getEnvAsDecimal("WITHDRAWAL_FEE_RATE", "0.015"),
			WithdrawalFeeMin:  getEnvAsDecimal("WITHDRAWAL_FEE_MIN", "50"),
			AccountEmail:      getEnv("PLATFORM_ACCOUNT_EMAIL", "platform@campusmarket.local"),
			HoldAlertAge:      getEnvAsDuration("ESCROW_HOLD_ALERT_AGE", 72*time.Hour),
		},
		Paystack: PaystackConfig{
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	d, _ := decimal.NewFromString(defaultValue)
	return d
}
