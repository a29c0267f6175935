package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/env"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/logger"
	"github.com/kbukum/httpbridge/observability"
	"github.com/kbukum/httpbridge/profile"
)

// Adapter runs request environments through profile engines.
type Adapter struct {
	cfg          Config
	defaults     Options
	profiles     *profile.Registry
	ownsProfiles bool
	log          *logger.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRegistry uses profiles instead of building a registry from the
// configured profiles. The caller keeps ownership of the registry.
func WithRegistry(profiles *profile.Registry) Option {
	return func(a *Adapter) { a.profiles = profiles }
}

// WithLogger sets the adapter's logger.
func WithLogger(log *logger.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// New creates an Adapter. The first call probes the platform trust store.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	initCapabilities()

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Adapter{
		cfg:      cfg,
		defaults: cfg.defaults(),
		log:      logger.Get("adapter"),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.profiles == nil {
		reg, err := buildRegistry(cfg, engine.WithLogging(logger.Get("engine")))
		if err != nil {
			return nil, err
		}
		a.profiles = reg
		a.ownsProfiles = true
	}
	return a, nil
}

// buildRegistry creates every configured profile.
func buildRegistry(cfg Config, middlewares ...engine.Middleware) (*profile.Registry, error) {
	reg := profile.NewRegistry(middlewares...)
	for _, name := range cfg.profileNames() {
		if err := reg.Create(name, cfg.Profiles[name]); err != nil {
			_ = reg.Close()
			return nil, err
		}
	}
	return reg, nil
}

// Profiles returns the profile registry.
func (a *Adapter) Profiles() *profile.Registry { return a.profiles }

// Close closes the engines of a registry built by New.
func (a *Adapter) Close() error {
	if !a.ownsProfiles {
		return nil
	}
	return a.profiles.Close()
}

// Call executes e with opts and fills the response slot of e. Connection
// failures are returned as ECONNREFUSED; other engine errors pass through.
func (a *Adapter) Call(ctx context.Context, e *env.Env, opts Options) (*env.Env, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanAdapterCall)
	defer span.End()

	requestID := uuid.NewString()
	fields := map[string]interface{}{
		logger.FieldRequestID: requestID,
		logger.FieldMethod:    e.Method.String(),
		logger.FieldURL:       e.URL,
	}
	observability.SetSpanAttribute(ctx, observability.AttrRequestID, requestID)
	observability.SetSpanAttribute(ctx, observability.AttrMethod, e.Method.String())
	observability.SetSpanAttribute(ctx, observability.AttrURL, e.URL)
	if e.Body != nil {
		fields[logger.FieldBodyKind] = string(e.Body.Kind())
		observability.SetSpanAttribute(ctx, observability.AttrBodyKind, string(e.Body.Kind()))
	}

	res, err := a.call(ctx, e, opts, fields)
	logger.MergeWithDuration(fields, time.Since(start))
	if name, ok := fields[logger.FieldProfile].(string); ok {
		observability.SetSpanAttribute(ctx, observability.AttrProfile, name)
	}
	if err != nil {
		fields[logger.FieldError] = err.Error()
		observability.SetSpanError(ctx, err)
		observability.SetSpanAttribute(ctx, observability.AttrErrorMessage, err.Error())
		a.log.Warn("call failed", fields)
		return nil, err
	}

	e.Status, e.ResponseHeaders, e.ResponseBody = Decode(res)
	fields[logger.FieldStatus] = e.Status
	observability.SetSpanAttribute(ctx, observability.AttrStatusCode, e.Status)
	a.log.Info("call completed", fields)
	return e, nil
}

func (a *Adapter) call(ctx context.Context, e *env.Env, opts Options, fields map[string]interface{}) (*engine.Response, error) {
	if !e.Method.Valid() {
		return nil, errors.InvalidInput("method", fmt.Sprintf("unknown method %q", e.Method))
	}

	r := resolve(a.defaults, e.Opts, opts)
	name := r.Profile(a.cfg.DefaultProfile)
	fields[logger.FieldProfile] = name

	engineOpts, err := r.EngineOptions()
	if err != nil {
		return nil, err
	}
	req, err := Encode(e, r)
	if err != nil {
		return nil, err
	}
	eng, err := a.profiles.Get(name)
	if err != nil {
		return nil, err
	}
	fields[logger.FieldEngine] = eng.Name()

	res, err := eng.Execute(ctx, &engine.Call{
		Request: req,
		Options: engineOpts,
		Extras:  r.Extras(),
	})
	if err != nil {
		return nil, Normalize(err)
	}
	return res, nil
}
