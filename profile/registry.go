package profile

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/engine/fast"
	"github.com/kbukum/httpbridge/engine/nethttp"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/logger"
)

// Registry holds engine factories by kind and engines by profile name.
type Registry struct {
	mu         sync.RWMutex
	factories  map[string]Factory
	engines    map[string]engine.Engine
	middleware engine.Middleware
	log        *logger.Logger
}

// NewRegistry creates a registry with the built-in engine kinds. Every
// engine added to it is wrapped with middlewares, first outermost.
func NewRegistry(middlewares ...engine.Middleware) *Registry {
	r := &Registry{
		factories:  make(map[string]Factory),
		engines:    make(map[string]engine.Engine),
		middleware: engine.Chain(middlewares...),
		log:        logger.Get("profile"),
	}
	r.RegisterFactory(nethttp.Name, NetHTTP)
	r.RegisterFactory(fast.Name, FastHTTP)
	return r
}

// RegisterFactory registers a factory for an engine kind.
func (r *Registry) RegisterFactory(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Kinds returns the sorted engine kinds with a registered factory.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Create builds the engine for a profile and registers it under name.
func (r *Registry) Create(name string, cfg Config) error {
	r.mu.RLock()
	factory, ok := r.factories[cfg.Engine]
	r.mu.RUnlock()
	if !ok {
		return errors.InvalidInput("profiles."+name+".engine",
			fmt.Sprintf("unknown engine %q (available: %v)", cfg.Engine, r.Kinds()))
	}

	e, err := factory(cfg.Settings)
	if err != nil {
		return fmt.Errorf("profile %q: %w", name, err)
	}
	r.Register(name, e)
	r.log.Info("profile created", logger.Fields(logger.FieldProfile, name, logger.FieldEngine, cfg.Engine))
	return nil
}

// Register adds an engine under name, replacing and closing any previous one.
func (r *Registry) Register(name string, e engine.Engine) {
	wrapped := r.middleware(e)

	r.mu.Lock()
	prev, replaced := r.engines[name]
	r.engines[name] = wrapped
	r.mu.Unlock()

	if replaced {
		closeEngine(prev)
	}
}

// Get returns the engine for a profile, or a NOT_FOUND error.
func (r *Registry) Get(name string) (engine.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.engines[name]; ok {
		return e, nil
	}
	return nil, errors.NotFound("profile", name)
}

// Names returns the sorted profile names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health reports the availability of every profile's engine.
func (r *Registry) Health(ctx context.Context) map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.engines))
	for name, e := range r.engines {
		out[name] = e.IsAvailable(ctx)
	}
	return out
}

// Close closes every engine and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[string]engine.Engine)
	r.mu.Unlock()

	var errs []error
	for name, e := range engines {
		if err := closeEngine(e); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}

func closeEngine(e engine.Engine) error {
	if c, ok := e.(engine.Closer); ok {
		return c.Close()
	}
	return nil
}
