package adapter

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/httpbridge/component"
	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/logger"
	"github.com/kbukum/httpbridge/observability"
	"github.com/kbukum/httpbridge/profile"
)

// Component manages an Adapter's lifecycle: observability setup, profile
// engines and their shutdown.
type Component struct {
	cfg Config

	mu       sync.RWMutex
	adapter  *Adapter
	profiles *profile.Registry
	tracer   *sdktrace.TracerProvider
	meter    *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a Component. Defaults are applied to cfg.
func NewComponent(cfg Config) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg}
}

// Name returns the configured adapter name.
func (c *Component) Name() string { return c.cfg.Name }

// Adapter returns the running adapter, or nil before Start.
func (c *Component) Adapter() *Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapter
}

// Start initializes tracing and metrics when enabled, builds the profile
// engines with logging, tracing and metrics middleware, and creates the
// Adapter.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adapter != nil {
		return nil
	}

	cfg := c.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(&cfg.Logging, cfg.Name).WithComponent("adapter")
	logger.Register(cfg.Name, log)

	middlewares := []engine.Middleware{engine.WithLogging(log.WithComponent("engine"))}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, &cfg.Tracing)
		if err != nil {
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}
		c.tracer = tp
		middlewares = append(middlewares, engine.WithTracing(cfg.Name))
	}
	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, &cfg.Metrics)
		if err != nil {
			c.shutdown(ctx)
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}
		c.meter = mp
		metrics, err := observability.NewMetrics(mp.Meter(cfg.Name))
		if err != nil {
			c.shutdown(ctx)
			return fmt.Errorf("%s: %w", cfg.Name, err)
		}
		middlewares = append(middlewares, engine.WithMetrics(metrics))
	}

	profiles, err := buildRegistry(cfg, middlewares...)
	if err != nil {
		c.shutdown(ctx)
		return err
	}
	a, err := New(cfg, WithRegistry(profiles), WithLogger(log))
	if err != nil {
		_ = profiles.Close()
		c.shutdown(ctx)
		return err
	}

	c.adapter = a
	c.profiles = profiles
	log.Info("adapter started", logger.Fields(
		"profiles", strings.Join(profiles.Names(), ","),
		"default_profile", cfg.DefaultProfile,
	))
	return nil
}

// Stop closes the profile engines and flushes telemetry.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.adapter == nil {
		return nil
	}

	var errs []error
	if err := c.profiles.Close(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, c.shutdown(ctx)...)
	c.adapter = nil
	c.profiles = nil
	return stderrors.Join(errs...)
}

func (c *Component) shutdown(ctx context.Context) []error {
	var errs []error
	if c.tracer != nil {
		if err := c.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tracer = nil
	}
	if c.meter != nil {
		if err := c.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.meter = nil
	}
	return errs
}

// Health is unhealthy before Start or when no engine is available, and
// degraded when only some are.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := component.Health{Name: c.cfg.Name}
	if c.adapter == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}

	var down []string
	avail := c.profiles.Health(ctx)
	for name, ok := range avail {
		if !ok {
			down = append(down, name)
		}
	}
	sort.Strings(down)

	switch {
	case len(down) == 0:
		h.Status = component.StatusHealthy
	case len(down) == len(avail):
		h.Status = component.StatusUnhealthy
		h.Message = "no engine available"
	default:
		h.Status = component.StatusDegraded
		h.Message = "unavailable profiles: " + strings.Join(down, ",")
	}
	return h
}

// Describe returns a summary for startup output.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "HTTP Bridge",
		Type:    "http-client",
		Details: fmt.Sprintf("profiles=%s default=%s", strings.Join(c.cfg.profileNames(), ","), c.cfg.DefaultProfile),
	}
}
