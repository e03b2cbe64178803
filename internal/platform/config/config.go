package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	RedisAddr    string
	IsProduction bool

	// SystemUserID is the actor recorded on automated postings (jobs,
	// backfills) that have no human caller.
	SystemUserID string

	// AllowReconcileFromVerified permits collections to be reconciled
	// directly from the verified state, skipping approval. When false, only
	// approved collections can be reconciled.
	AllowReconcileFromVerified bool

	// FailedDeliveryFee is the flat operational cost posted when a delivery
	// fails and no per-delivery fee is recorded.
	FailedDeliveryFee float64

	// MaintenanceRateLimit is the ulule/limiter formatted rate (e.g. "10-M")
	// applied to the maintenance command endpoints.
	MaintenanceRateLimit string

	// Job schedules (cron or @every syntax) for the background worker.
	ReconcileSchedule string
	BackfillSchedule  string
	AgingSchedule     string

	ShutdownTimeout time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("SYSTEM_USER_ID", "system")
	viper.SetDefault("ALLOW_RECONCILE_FROM_VERIFIED", true)
	viper.SetDefault("FAILED_DELIVERY_FEE", 50.00)
	viper.SetDefault("MAINTENANCE_RATE_LIMIT", "10-M")
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 1h")
	viper.SetDefault("BACKFILL_SCHEDULE", "@every 24h")
	viper.SetDefault("AGING_SCHEDULE", "@every 6h")
	viper.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.SystemUserID = viper.GetString("SYSTEM_USER_ID")
	cfg.AllowReconcileFromVerified = viper.GetBool("ALLOW_RECONCILE_FROM_VERIFIED")
	cfg.FailedDeliveryFee = viper.GetFloat64("FAILED_DELIVERY_FEE")
	cfg.MaintenanceRateLimit = viper.GetString("MAINTENANCE_RATE_LIMIT")
	cfg.ReconcileSchedule = viper.GetString("RECONCILE_SCHEDULE")
	cfg.BackfillSchedule = viper.GetString("BACKFILL_SCHEDULE")
	cfg.AgingSchedule = viper.GetString("AGING_SCHEDULE")

	shutdownStr := viper.GetString("SHUTDOWN_TIMEOUT")
	shutdown, err := time.ParseDuration(shutdownStr)
	if err != nil {
		shutdown = 10 * time.Second
		if shutdownStr != "" {
			log.Printf("Warning: Invalid value for SHUTDOWN_TIMEOUT ('%s'). Defaulting to %s.\n", shutdownStr, shutdown)
		}
	}
	cfg.ShutdownTimeout = shutdown

	return cfg, nil
}
