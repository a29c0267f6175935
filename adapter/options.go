package adapter

import (
	"maps"
	"reflect"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/env"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/profile"
	"github.com/kbukum/httpbridge/security"
)

// Option keys.
const (
	OptTimeout        = "timeout"
	OptConnectTimeout = "connect_timeout"
	OptSSL            = "ssl"
	OptAutoRedirect   = "autoredirect"
	OptProxyAuth      = "proxy_auth"
	OptVersion        = "version"
	OptRelaxed        = "relaxed"
	OptURLEncode      = "url_encode"

	OptProfile                = "profile"
	OptKeepBodylessMethodBody = "keep_bodyless_method_body"
)

// engineKeys is the allow-list of options passed to engines.
var engineKeys = map[string]struct{}{
	OptTimeout:        {},
	OptConnectTimeout: {},
	OptSSL:            {},
	OptAutoRedirect:   {},
	OptProxyAuth:      {},
	OptVersion:        {},
	OptRelaxed:        {},
	OptURLEncode:      {},
}

// Options maps option names to values.
type Options map[string]any

// Resolved holds the two disjoint views of the merged options.
type Resolved struct {
	Engine  Options
	Adapter Options
}

var (
	capOnce     sync.Once
	tlsDefaults map[string]any
)

// initCapabilities probes the platform trust store once per process and
// records the default ssl block when it is available.
func initCapabilities() {
	capOnce.Do(func() {
		if security.SystemTrustAvailable() {
			tlsDefaults = defaultSSL()
		}
	})
}

func defaultSSL() map[string]any {
	d := security.DefaultVerifyConfig()
	return map[string]any{
		"verify":         d.Verify,
		"use_system_cas": d.UseSystemCAs,
		"depth":          d.Depth,
		"crl_check":      d.CRLCheck,
		"crl_refresh":    d.CRLRefresh,
	}
}

// Resolve merges the environment's options and the caller's options.
func Resolve(e *env.Env, caller Options) Resolved {
	return resolve(nil, e.Opts, caller)
}

// resolve merges defaults < env < caller. autoredirect is false unless the
// caller sets it. A top-level ssl value replaces the injected block.
func resolve(defaults, fromEnv, caller Options) Resolved {
	initCapabilities()

	merged := make(Options, len(defaults)+len(fromEnv)+len(caller)+2)
	if tlsDefaults != nil {
		merged[OptSSL] = maps.Clone(tlsDefaults)
	}
	maps.Copy(merged, defaults)
	maps.Copy(merged, fromEnv)
	merged[OptAutoRedirect] = false
	maps.Copy(merged, caller)

	r := Resolved{Engine: Options{}, Adapter: Options{}}
	for k, v := range merged {
		if _, ok := engineKeys[k]; ok {
			r.Engine[k] = v
		} else {
			r.Adapter[k] = v
		}
	}
	return r
}

// Profile returns the profile option, or fallback.
func (r Resolved) Profile(fallback string) string {
	if p, ok := r.Adapter[OptProfile].(string); ok && p != "" {
		return p
	}
	return fallback
}

// Extras returns the adapter view without the routing key.
func (r Resolved) Extras() map[string]any {
	extras := maps.Clone(map[string]any(r.Adapter))
	delete(extras, OptProfile)
	return extras
}

// keepBodylessMethodBody reports whether a body on GET, OPTIONS, HEAD or
// TRACE should be sent. A value that does not decode as a bool is an
// INVALID_INPUT error.
func (r Resolved) keepBodylessMethodBody() (bool, error) {
	v, ok := r.Adapter[OptKeepBodylessMethodBody]
	if !ok || v == nil {
		return false, nil
	}
	var keep bool
	if err := mapstructure.WeakDecode(v, &keep); err != nil {
		return false, errors.InvalidInput(OptKeepBodylessMethodBody, err.Error()).WithCause(err)
	}
	return keep, nil
}

// EngineOptions decodes the engine view into a typed record. Durations may
// be strings ("5s") or integer milliseconds. ssl and proxy_auth may be maps
// or their typed values; proxy_auth also accepts "user:password".
func (r Resolved) EngineOptions() (engine.Options, error) {
	var out engine.Options
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			proxyAuthHook(),
			profile.MillisHook(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, errors.Internal(err)
	}
	if err := dec.Decode(map[string]any(r.Engine)); err != nil {
		return engine.Options{}, errors.InvalidInput("options", err.Error()).WithCause(err)
	}
	return out, nil
}

var proxyAuthType = reflect.TypeOf(engine.ProxyAuth{})

// proxyAuthHook accepts "user:password" for proxy_auth.
func proxyAuthHook() mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		s, ok := data.(string)
		if !ok || to != proxyAuthType {
			return data, nil
		}
		user, pass, _ := strings.Cut(s, ":")
		return engine.ProxyAuth{Username: user, Password: pass}, nil
	}
}
