// Package config loads httpbridge configuration.
//
// It uses Viper to read a YAML/JSON/TOML file and godotenv to load an
// optional .env file, then overlays environment variables and unmarshals
// the result into a caller-supplied struct.
//
// # Usage
//
//	var cfg adapter.Config
//	err := config.LoadConfig("httpbridge", &cfg, config.WithConfigFile("config.yml"))
//
// Environment variables override file values. They use the upper-cased
// service name as prefix and a double underscore as the nesting separator:
//
//	HTTPBRIDGE_DEFAULT_PROFILE=fast              -> default_profile
//	HTTPBRIDGE_PROFILES__FAST__RETRY_MAX=2       -> profiles.fast.retry_max
package config
