// Package validation validates httpbridge configuration.
//
// Struct tag validation (go-playground/validator) reports fields by their
// mapstructure names so messages match the keys in config.yml. The
// programmatic Validator collects cross-field problems that tags cannot
// express, such as a default profile missing from the profile map.
//
//	err := validation.Validate(cfg)
//
//	v := validation.New()
//	v.Custom(ok, "default_profile", "must name a configured profile")
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
