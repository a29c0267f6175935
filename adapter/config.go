package adapter

import (
	"fmt"
	"maps"
	"sort"

	"github.com/kbukum/httpbridge/config"
	"github.com/kbukum/httpbridge/engine/nethttp"
	"github.com/kbukum/httpbridge/logger"
	"github.com/kbukum/httpbridge/observability"
	"github.com/kbukum/httpbridge/profile"
	"github.com/kbukum/httpbridge/validation"
)

const (
	DefaultName    = "httpbridge"
	DefaultProfile = "default"
)

// Config configures an Adapter and its profiles.
type Config struct {
	Name           string `yaml:"name" mapstructure:"name"`
	DefaultProfile string `yaml:"default_profile" mapstructure:"default_profile"`

	// KeepBodylessMethodBody sends caller bodies on GET, OPTIONS, HEAD and
	// TRACE instead of dropping them.
	KeepBodylessMethodBody bool `yaml:"keep_bodyless_method_body" mapstructure:"keep_bodyless_method_body"`

	// Options are the lowest precedence call options.
	Options map[string]any `yaml:"options" mapstructure:"options"`

	Profiles map[string]profile.Config `yaml:"profiles" mapstructure:"profiles" validate:"dive"`

	Logging logger.Config              `yaml:"logging" mapstructure:"logging"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics observability.MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// ApplyDefaults fills in zero-value fields. Without profiles a single
// net/http profile named DefaultProfile is configured.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.DefaultProfile == "" {
		c.DefaultProfile = DefaultProfile
	}
	if len(c.Profiles) == 0 {
		c.Profiles = map[string]profile.Config{
			c.DefaultProfile: {Engine: nethttp.Name},
		}
	}
	c.Logging.ApplyDefaults()
	c.Tracing.ApplyDefaults(c.Name)
	c.Metrics.ApplyDefaults(c.Name)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	if _, ok := c.Profiles[c.DefaultProfile]; !ok {
		v.AddError("default_profile", fmt.Sprintf("%q is not one of the profiles %v", c.DefaultProfile, c.profileNames()))
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (c *Config) profileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaults returns the lowest precedence option tier.
func (c *Config) defaults() Options {
	opts := make(Options, len(c.Options)+1)
	maps.Copy(opts, c.Options)
	if c.KeepBodylessMethodBody {
		opts[OptKeepBodylessMethodBody] = true
	}
	return opts
}

// LoadConfig reads a Config for the adapter named DefaultName from its
// config file, .env file and HTTPBRIDGE_ environment variables, then applies
// defaults and validates it. Nested keys use "__" in variable names, e.g.
// HTTPBRIDGE_PROFILES__BULK__ENGINE=fasthttp.
func LoadConfig(opts ...config.LoaderOption) (Config, error) {
	var cfg Config
	if err := config.LoadConfig(DefaultName, &cfg, opts...); err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
