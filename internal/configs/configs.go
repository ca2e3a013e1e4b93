/*
Package configs loads and validates the application's configuration settings.

Values come from environment variables (optionally pre-loaded from a .env file) and, when
CONFIG_FILE is set, from a YAML file; environment variables win. Every key has a default
so a bare `anonchat` starts a single-device widget backed by a local SQLite file.
*/
package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"anonchat/internal/app/storage"
)

// Payment modes.
const (
	PaymentSimulated = "simulated"
	PaymentDisabled  = "disabled"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment    string
	Port           int
	AllowedOrigins []string

	// Storage Settings
	LocalStorePath string
	SharedStore    storage.Backend
	StorageRate    float64
	StorageBurst   int
	StorageTimeout time.Duration

	// Redis Settings
	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	RedisNamespace string

	// S3 Storage Settings
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Prefix          string

	// Database Settings
	DatabaseDSN string

	// Widget Settings
	PollInterval time.Duration
	FreeAccess   time.Duration
	PaidAccess   time.Duration

	// Payment Settings
	PriceAmount           int64
	PriceCurrency         string
	PaymentMode           string
	PaymentDelay          time.Duration
	PaymentSuccessDisplay time.Duration
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// StorageConfig returns the storage settings in the form the storage package expects.
func (c *AppConfig) StorageConfig() storage.Config {
	return storage.Config{
		LocalPath: c.LocalStorePath,
		Shared:    c.SharedStore,
		Redis: storage.RedisConfig{
			Address:   c.RedisAddress,
			Password:  c.RedisPassword,
			DB:        c.RedisDB,
			Namespace: c.RedisNamespace,
		},
		S3: storage.S3Config{
			BucketName:      c.S3BucketName,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			Prefix:          c.S3Prefix,
		},
		DatabaseURL: c.DatabaseDSN,
		Rate:        c.StorageRate,
		Burst:       c.StorageBurst,
		Timeout:     c.StorageTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("allowed_origins", "")

	v.SetDefault("local_store_path", "anonchat.db")
	v.SetDefault("shared_store", string(storage.BackendLocal))
	v.SetDefault("storage_rate", 20.0)
	v.SetDefault("storage_burst", 40)
	v.SetDefault("storage_timeout", "5s")

	v.SetDefault("redis_address", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_namespace", "anonchat:")

	v.SetDefault("s3_bucket_name", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")
	v.SetDefault("s3_prefix", "anonchat/")

	v.SetDefault("database_url", "")

	v.SetDefault("poll_interval", "3s")
	v.SetDefault("free_access", "30m")
	v.SetDefault("paid_access", "1h")

	v.SetDefault("price_amount", 100)
	v.SetDefault("price_currency", "INR")
	v.SetDefault("payment_mode", PaymentSimulated)
	v.SetDefault("payment_delay", "2s")
	v.SetDefault("payment_success_display", "2s")
}

// LoadConfig reads and validates the application configuration.
func LoadConfig() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &AppConfig{
		Environment:    v.GetString("environment"),
		Port:           v.GetInt("port"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),

		LocalStorePath: v.GetString("local_store_path"),
		SharedStore:    storage.Backend(strings.ToLower(v.GetString("shared_store"))),
		StorageRate:    v.GetFloat64("storage_rate"),
		StorageBurst:   v.GetInt("storage_burst"),
		StorageTimeout: v.GetDuration("storage_timeout"),

		RedisAddress:   v.GetString("redis_address"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		RedisNamespace: v.GetString("redis_namespace"),

		S3BucketName:      v.GetString("s3_bucket_name"),
		S3Endpoint:        v.GetString("s3_endpoint"),
		S3AccessKeyID:     v.GetString("s3_access_key_id"),
		S3SecretAccessKey: v.GetString("s3_secret_access_key"),
		S3Prefix:          v.GetString("s3_prefix"),

		DatabaseDSN: v.GetString("database_url"),

		PollInterval: v.GetDuration("poll_interval"),
		FreeAccess:   v.GetDuration("free_access"),
		PaidAccess:   v.GetDuration("paid_access"),

		PriceAmount:           v.GetInt64("price_amount"),
		PriceCurrency:         strings.ToUpper(v.GetString("price_currency")),
		PaymentMode:           strings.ToLower(v.GetString("payment_mode")),
		PaymentDelay:          v.GetDuration("payment_delay"),
		PaymentSuccessDisplay: v.GetDuration("payment_success_display"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	if c.LocalStorePath == "" {
		return fmt.Errorf("LOCAL_STORE_PATH must not be empty")
	}

	switch c.SharedStore {
	case storage.BackendLocal, storage.BackendMemory:
	case storage.BackendRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS environment variable is required for the redis shared store")
		}
	case storage.BackendS3:
		for name, value := range map[string]string{
			"S3_BUCKET_NAME":       c.S3BucketName,
			"S3_ENDPOINT":          c.S3Endpoint,
			"S3_ACCESS_KEY_ID":     c.S3AccessKeyID,
			"S3_SECRET_ACCESS_KEY": c.S3SecretAccessKey,
		} {
			if value == "" {
				return fmt.Errorf("%s environment variable is required for the s3 shared store", name)
			}
		}
	case storage.BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for the postgres shared store")
		}
	default:
		return fmt.Errorf("invalid SHARED_STORE %q (want local, memory, redis, s3 or postgres)", c.SharedStore)
	}

	if c.StorageRate <= 0 || c.StorageBurst < 1 {
		return fmt.Errorf("STORAGE_RATE must be positive and STORAGE_BURST at least 1")
	}

	for name, d := range map[string]time.Duration{
		"STORAGE_TIMEOUT":         c.StorageTimeout,
		"POLL_INTERVAL":           c.PollInterval,
		"FREE_ACCESS":             c.FreeAccess,
		"PAID_ACCESS":             c.PaidAccess,
		"PAYMENT_SUCCESS_DISPLAY": c.PaymentSuccessDisplay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}

	if c.FreeAccess < time.Second || c.PaidAccess < time.Second {
		return fmt.Errorf("FREE_ACCESS and PAID_ACCESS must be at least one second")
	}

	if c.PriceAmount <= 0 {
		return fmt.Errorf("PRICE_AMOUNT must be positive, got %d", c.PriceAmount)
	}

	if len(c.PriceCurrency) != 3 {
		return fmt.Errorf("PRICE_CURRENCY must be a three-letter code, got %q", c.PriceCurrency)
	}

	if c.PaymentMode != PaymentSimulated && c.PaymentMode != PaymentDisabled {
		return fmt.Errorf("invalid PAYMENT_MODE %q (want simulated or disabled)", c.PaymentMode)
	}

	if c.PaymentDelay < 0 {
		return fmt.Errorf("PAYMENT_DELAY must not be negative")
	}

	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
