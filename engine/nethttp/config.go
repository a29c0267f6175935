package nethttp

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultMaxIdleConns       = 100
	defaultIdleConnTimeout    = 90 * time.Second
	defaultConnectTimeout     = 30 * time.Second
	defaultTransportCacheSize = 16
	defaultRetryWaitMin       = 100 * time.Millisecond
	defaultRetryWaitMax       = 2 * time.Second
)

// Config configures a net/http engine instance.
type Config struct {
	MaxIdleConns       int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	MaxConnsPerHost    int           `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	IdleConnTimeout    time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
	TransportCacheSize int           `yaml:"transport_cache_size" mapstructure:"transport_cache_size"`

	// Proxy is the proxy URL. Empty uses the environment (HTTP_PROXY etc.).
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// RetryMax enables retries of in-memory bodies. Zero disables them.
	RetryMax     int           `yaml:"retry_max" mapstructure:"retry_max"`
	RetryWaitMin time.Duration `yaml:"retry_wait_min" mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `yaml:"retry_wait_max" mapstructure:"retry_wait_max"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaultMaxIdleConns
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	if c.TransportCacheSize <= 0 {
		c.TransportCacheSize = defaultTransportCacheSize
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = defaultRetryWaitMin
	}
	if c.RetryWaitMax <= 0 {
		c.RetryWaitMax = defaultRetryWaitMax
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.RetryMax < 0 {
		return fmt.Errorf("nethttp: retry_max must not be negative")
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		return fmt.Errorf("nethttp: retry_wait_max must be >= retry_wait_min")
	}
	if c.Proxy != "" {
		if _, err := url.Parse(c.Proxy); err != nil {
			return fmt.Errorf("nethttp: invalid proxy url: %w", err)
		}
	}
	return nil
}
