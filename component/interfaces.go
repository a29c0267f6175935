package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of an application.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a component's self-reported summary.
type Description struct {
	// Name is the display name. Empty means the component's Name().
	Name string
	// Type categorizes the component, e.g. "http-client".
	Type string
	// Details is a one-line configuration summary,
	// e.g. "profiles=default,bulk default=default".
	Details string
}

// Describable is optionally implemented by components that can summarize
// themselves.
type Describable interface {
	Describe() Description
}
