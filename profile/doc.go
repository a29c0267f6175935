// Package profile maps profile names to configured engine instances.
//
// A profile names an engine kind ("nethttp" or "fasthttp") plus the settings
// for that engine: pool sizes, proxy, retries. The Registry builds each
// profile once through the factory registered for its kind, wraps it with the
// registry's middleware and hands it out by name.
package profile
