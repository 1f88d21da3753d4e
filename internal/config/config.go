package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Stripe configuration
	StripeSecretKey     string
	StripeWebhookSecret string

	// Checkout redirect URLs
	CheckoutSuccessURL string
	CheckoutCancelURL  string

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Admin API configuration
	AdminAPIToken string

	// Fulfillment configuration
	BonusWindowHours int
	RecoveryLookback int
}

// Load reads configuration from the environment. The returned Config is
// passed explicitly into constructors; nothing here is kept as a global.
func Load() (*Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Mode:                getEnv("GIN_MODE", "debug"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "https://voxlux.co/merci"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "https://voxlux.co/"),
		BrevoAPIKey:         getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:      getEnv("BREVO_FROM_EMAIL", "hello@voxlux.co"),
		BrevoFromName:       getEnv("BREVO_FROM_NAME", "VoxLux"),
		AdminAPIToken:       getEnv("ADMIN_API_TOKEN", ""),
		BonusWindowHours:    getEnvInt("BONUS_WINDOW_HOURS", 24),
		RecoveryLookback:    getEnvInt("RECOVERY_LOOKBACK", 5),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
