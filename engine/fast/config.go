package fast

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultMaxConnsPerHost = 512
	defaultIdleConnTimeout = 10 * time.Second
	defaultConnectTimeout  = 30 * time.Second
	defaultClientCacheSize = 16
	defaultMaxRedirects    = 16
)

// Config configures a fasthttp engine instance.
type Config struct {
	MaxConnsPerHost int           `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout"`
	ClientCacheSize int           `yaml:"transport_cache_size" mapstructure:"transport_cache_size"`
	MaxRedirects    int           `yaml:"max_redirects" mapstructure:"max_redirects"`

	// Proxy is the HTTP proxy address, e.g. "proxy.local:3128" or
	// "http://proxy.local:3128". Empty dials targets directly.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// RetryMax is the number of extra attempts for idempotent requests.
	RetryMax int `yaml:"retry_max" mapstructure:"retry_max"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxConnsPerHost <= 0 {
		c.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if c.IdleConnTimeout <= 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
	if c.ClientCacheSize <= 0 {
		c.ClientCacheSize = defaultClientCacheSize
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.RetryMax < 0 {
		return fmt.Errorf("fast: retry_max must not be negative")
	}
	if c.Proxy != "" {
		if _, err := proxyHost(c.Proxy); err != nil {
			return err
		}
	}
	return nil
}

// proxyHost strips an optional scheme and credentials from the proxy address.
func proxyHost(proxy string) (string, error) {
	raw := proxy
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("fast: invalid proxy %q", proxy)
	}
	return u.Host, nil
}
