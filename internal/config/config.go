package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Telegram struct {
		Token    string
		AdminIDs []int64
	}
	DB struct {
		Host         string
		Port         string
		User         string
		Password     string
		DBName       string
		SSLMode      string
		MaxOpenConns int
		MaxIdleConns int
		ConnLifetime time.Duration
	}
	Inference struct {
		APIKey          string
		BaseURL         string
		Model           string
		TranscribeModel string
		Timeout         time.Duration
	}
	Stripe struct {
		SecretKey  string
		PublicKey  string
		WebhookKey string
		PriceID    string
	}
	Access struct {
		TrialPeriod time.Duration
		DailyChecks int
		PremiumDays int
	}
	Server struct {
		Port string
	}
	ShutdownTimeout time.Duration
}

// Load loads the configuration
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.calorigram")

	v.SetDefault("ShutdownTimeout", 10*time.Second)
	v.SetDefault("Inference.BaseURL", "https://api.studio.nebius.ai/v1/")
	v.SetDefault("Inference.Model", "Qwen/Qwen2.5-VL-72B-Instruct")
	v.SetDefault("Inference.TranscribeModel", "whisper-large-v3")
	v.SetDefault("Inference.Timeout", 30*time.Second)
	v.SetDefault("Access.TrialPeriod", 24*time.Hour)
	v.SetDefault("Access.DailyChecks", 3)
	v.SetDefault("Access.PremiumDays", 30)
	v.SetDefault("Server.Port", "8080")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)

	v.AutomaticEnv()

	// Config file is optional: fall back to environment variables only.
	if err := v.ReadInConfig(); err != nil {
		cfg := defaultsFrom(v)
		cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
		cfg.Telegram.AdminIDs = parseAdminIDs(os.Getenv("ADMIN_IDS"))
		cfg.DB.Host = getEnvOr("DB_HOST", "localhost")
		cfg.DB.Port = getEnvOr("DB_PORT", "5432")
		cfg.DB.User = getEnvOr("DB_USER", "postgres")
		cfg.DB.Password = getEnvOr("DB_PASSWORD", "postgres")
		cfg.DB.DBName = getEnvOr("DB_NAME", "calorigram")
		cfg.DB.SSLMode = getEnvOr("DB_SSL_MODE", "disable")
		cfg.Inference.APIKey = os.Getenv("NEBIUS_API_KEY")
		cfg.Inference.BaseURL = getEnvOr("NEBIUS_BASE_URL", cfg.Inference.BaseURL)
		cfg.Inference.Model = getEnvOr("NEBIUS_MODEL", cfg.Inference.Model)
		cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
		cfg.Stripe.PublicKey = os.Getenv("STRIPE_PUBLIC_KEY")
		cfg.Stripe.WebhookKey = os.Getenv("STRIPE_WEBHOOK_KEY")
		cfg.Stripe.PriceID = os.Getenv("STRIPE_PRICE_ID")
		cfg.Server.Port = getEnvOr("SERVER_PORT", "8080")
		return cfg, nil
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func defaultsFrom(v *viper.Viper) *Config {
	cfg := &Config{}
	cfg.ShutdownTimeout = v.GetDuration("ShutdownTimeout")
	cfg.Inference.BaseURL = v.GetString("Inference.BaseURL")
	cfg.Inference.Model = v.GetString("Inference.Model")
	cfg.Inference.TranscribeModel = v.GetString("Inference.TranscribeModel")
	cfg.Inference.Timeout = v.GetDuration("Inference.Timeout")
	cfg.Access.TrialPeriod = v.GetDuration("Access.TrialPeriod")
	cfg.Access.DailyChecks = v.GetInt("Access.DailyChecks")
	cfg.Access.PremiumDays = v.GetInt("Access.PremiumDays")
	cfg.DB.MaxOpenConns = v.GetInt("DB.MaxOpenConns")
	cfg.DB.MaxIdleConns = v.GetInt("DB.MaxIdleConns")
	cfg.DB.ConnLifetime = v.GetDuration("DB.ConnLifetime")
	return cfg
}

// parseAdminIDs parses a comma-separated list of Telegram IDs.
func parseAdminIDs(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		var id int64
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &id); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Helper function to get environment variable with default value
func getEnvOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
