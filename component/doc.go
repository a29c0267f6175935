// Package component defines lifecycle interfaces for long-lived parts of an
// application, such as an adapter holding pooled engines.
//
// A Registry starts components in registration order, stops them in reverse
// order and collects their health.
package component
