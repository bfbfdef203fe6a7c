package core

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL              = "https://integrations.appnigma.ai"
	DefaultTimeout              = 30 * time.Second
	DefaultMaxResponseBodyBytes = int64(10 << 20)
	DefaultCredentialExpirySkew = time.Minute
)

type Config struct {
	APIKey               string        `koanf:"api_key" mapstructure:"api_key"`
	BaseURL              string        `koanf:"base_url" mapstructure:"base_url"`
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	Debug                bool          `koanf:"debug" mapstructure:"debug"`
	UserAgent            string        `koanf:"user_agent" mapstructure:"user_agent"`
	MaxResponseBodyBytes int64         `koanf:"max_response_body_bytes" mapstructure:"max_response_body_bytes"`
	CredentialExpirySkew time.Duration `koanf:"credential_expiry_skew" mapstructure:"credential_expiry_skew"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:              DefaultBaseURL,
		Timeout:              DefaultTimeout,
		MaxResponseBodyBytes: DefaultMaxResponseBodyBytes,
		CredentialExpirySkew: DefaultCredentialExpirySkew,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("core: api_key is required")
	}
	raw := strings.TrimSpace(c.BaseURL)
	if raw == "" {
		return fmt.Errorf("core: base_url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("core: base_url is invalid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("core: base_url must be an absolute http(s) url, got %q", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("core: base_url host is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("core: timeout must not be negative")
	}
	if c.MaxResponseBodyBytes < 0 {
		return fmt.Errorf("core: max_response_body_bytes must not be negative")
	}
	if c.CredentialExpirySkew < 0 {
		return fmt.Errorf("core: credential_expiry_skew must not be negative")
	}
	return nil
}

func (c Config) normalizedBaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}
