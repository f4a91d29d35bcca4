package ratelimit

import (
	"strings"
	"time"
)

// holds request limiter configuration
type Config struct {
	// max requests per window per client IP, 0 disables limiting
	Limit int

	Window time.Duration

	// key prefix in the backing store
	Prefix string

	// honour X-Forwarded-For / X-Real-IP from the reverse proxy
	TrustForwardHeader bool

	// paths that bypass the limiter (health checks, metrics)
	ExemptPaths []string
}

func DefaultConfig(limit int) *Config {
	return &Config{
		Limit:              limit,
		Window:             time.Minute,
		Prefix:             "kartuli:ratelimit",
		TrustForwardHeader: true,
		ExemptPaths:        []string{"/health", "/metrics", "/swagger"},
	}
}

func (c *Config) isExempt(path string) bool {
	for _, p := range c.ExemptPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}

	return false
}
