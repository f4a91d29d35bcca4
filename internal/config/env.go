package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	UsageStorePostgres = "postgres"
	UsageStoreRedis    = "redis"
	UsageStoreMemory   = "memory"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	cfg := fromEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loads configuration for tools that only touch the database and usage store
func LoadStorageConfig() (*Config, error) {
	cfg := fromEnvironment()

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromEnvironment() *Config {
	if err := godotenv.Load(); err != nil {
		_ = err // production environments may not have a .env file
	}

	return &Config{
		Environment:          getEnv("ENVIRONMENT", "development"),
		Port:                 getEnv("PORT", "8080"),
		BaseURL:              getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		UsageStore:           strings.ToLower(getEnv("USAGE_STORE", UsageStorePostgres)),
		DisableTokenTracking: getBool("DISABLE_TOKEN_TRACKING", false),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		AllowedOrigins:       splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimit:            getInt("RATE_LIMIT", 120),
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		},
		Flowise: FlowiseConfig{
			BaseURL:           strings.TrimRight(os.Getenv("FLOWISE_API_URL"), "/"),
			APIKey:            os.Getenv("FLOWISE_API_KEY"),
			ChatflowID:        os.Getenv("FLOWISE_CHATFLOW_ID"),
			ImageChatflowID:   os.Getenv("FLOWISE_IMAGE_CHATFLOW_ID"),
			Timeout:           getDuration("FLOWISE_TIMEOUT", 60*time.Second),
			MaxRetries:        uint(getInt("FLOWISE_MAX_RETRIES", 2)), //nolint:gosec // small non-negative config value
			RequestsPerSecond: getFloat("FLOWISE_RPS", 20),
		},
		BOG: BOGConfig{
			APIURL:       strings.TrimRight(getEnv("BOG_API_URL", "https://api.bog.ge/payments/v1"), "/"),
			TokenURL:     getEnv("BOG_TOKEN_URL", "https://oauth2.bog.ge/auth/realms/bog/protocol/openid-connect/token"),
			ClientID:     os.Getenv("BOG_CLIENT_ID"),
			ClientSecret: os.Getenv("BOG_CLIENT_SECRET"),
			PublicKey:    os.Getenv("BOG_PUBLIC_KEY"),
			PremiumPrice: getFloat("PREMIUM_PRICE_GEL", 19.99),
			Currency:     getEnv("BOG_CURRENCY", "GEL"),
		},
	}
}

// checks required values and their combinations
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	if c.Flowise.BaseURL == "" || c.Flowise.ChatflowID == "" {
		return fmt.Errorf("FLOWISE_API_URL and FLOWISE_CHATFLOW_ID environment variables are required")
	}

	return nil
}

func (c *Config) validateStorage() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	switch c.UsageStore {
	case UsageStorePostgres, UsageStoreMemory:
	case UsageStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when USAGE_STORE=redis")
		}
	default:
		return fmt.Errorf("unsupported USAGE_STORE %q", c.UsageStore)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}

	return b
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return fallback
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
