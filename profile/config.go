package profile

// Config describes one profile.
type Config struct {
	// Engine is the engine kind, e.g. "nethttp" or "fasthttp".
	Engine string `yaml:"engine" mapstructure:"engine" validate:"required"`

	// Settings holds the remaining keys, decoded by the engine factory.
	Settings map[string]any `yaml:",inline" mapstructure:",remain"`
}
