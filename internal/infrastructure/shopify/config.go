package shopify

import (
	"fmt"
	"time"
)

// Config carries the per-request tuning knobs for the Shopify Admin API
// client. Credentials are deliberately absent: they belong to the tenant and
// are supplied when a client is constructed.
type Config struct {
	APIVersion     string
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	PageSize       int
}

// DefaultConfig returns sensible settings for the Shopify Admin API.
func DefaultConfig() Config {
	return Config{
		APIVersion:     "2024-01",
		RequestTimeout: 30 * time.Second,
		MaxRetries:     4,
		RetryBaseDelay: 500 * time.Millisecond,
		PageSize:       250,
	}
}

// Validate checks the configuration for values the Admin API would reject.
func (c Config) Validate() error {
	if c.APIVersion == "" {
		return fmt.Errorf("api version is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBaseDelay <= 0 {
		return fmt.Errorf("retry base delay must be positive")
	}
	if c.PageSize < 1 || c.PageSize > 250 {
		return fmt.Errorf("page size must be between 1 and 250")
	}
	return nil
}
