package config

import "time"

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	DatabaseURL string
	RedisURL    string

	// which backend holds the usage counters: postgres, redis or memory
	UsageStore string

	// disables all quota reads and writes (local development without a database)
	DisableTokenTracking bool

	JWTSecret      string
	SessionSecret  string
	AllowedOrigins []string

	// requests per minute per client IP, 0 disables the limiter
	RateLimit int

	OAuth   OAuthConfig
	Flowise FlowiseConfig
	BOG     BOGConfig
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

type FlowiseConfig struct {
	BaseURL           string
	APIKey            string
	ChatflowID        string
	ImageChatflowID   string
	Timeout           time.Duration
	MaxRetries        uint
	RequestsPerSecond float64
}

type BOGConfig struct {
	APIURL       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	// PEM encoded key used to verify callback signatures
	PublicKey    string
	PremiumPrice float64
	Currency     string
}

// reports whether the payment gateway credentials are present
func (c BOGConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type Flags struct {
	ActorType string
	ActorID   string
	Plan      string
	At        string
}
