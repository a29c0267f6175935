package fast

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/logger"
)

// Name is the engine kind.
const Name = "fasthttp"

// Engine is a fasthttp backed engine.
type Engine struct {
	cfg     Config
	proxy   string
	dial    fasthttp.DialFunc
	clients *lru.Cache[string, *fasthttp.Client]
	log     *logger.Logger
	closed  atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDial replaces the dialer of every client. A configured proxy is
// bypassed.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(e *Engine) { e.dial = dial }
}

// New creates an engine from cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clients, err := lru.NewWithEvict(cfg.ClientCacheSize, func(_ string, c *fasthttp.Client) {
		c.CloseIdleConnections()
	})
	if err != nil {
		return nil, fmt.Errorf("fast: client cache: %w", err)
	}

	e := &Engine{
		cfg:     cfg,
		clients: clients,
		log:     logger.Get(Name),
	}
	if cfg.Proxy != "" {
		e.proxy, _ = proxyHost(cfg.Proxy)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Name returns the engine kind.
func (e *Engine) Name() string { return Name }

// IsAvailable reports whether the engine is open.
func (e *Engine) IsAvailable(_ context.Context) bool { return !e.closed.Load() }

// Close drops all cached clients and their idle connections.
func (e *Engine) Close() error {
	e.closed.Store(true)
	e.clients.Purge()
	return nil
}

// Execute performs the call and reads the full response body.
func (e *Engine) Execute(ctx context.Context, call *engine.Call) (*engine.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := call.Options

	client, err := e.client(opts)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	timeout := callTimeout(ctx, opts.Timeout)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := buildRequest(ctx, req, call); err != nil {
		return nil, err
	}
	if opts.ProxyAuth != nil && e.proxy == "" {
		e.log.Debug("proxy_auth set without a proxy, ignoring", nil)
	}

	switch {
	case opts.AutoRedirect:
		err = client.DoRedirects(req, resp, e.cfg.MaxRedirects)
	case timeout > 0:
		err = client.DoTimeout(req, resp, timeout)
	default:
		err = client.Do(req, resp)
	}
	if err != nil {
		return nil, classify(ctx, req, err)
	}

	return &engine.Response{
		Status:  statusLine(resp),
		Headers: fields(&resp.Header),
		Body:    engine.Blob(append([]byte(nil), resp.Body()...)),
	}, nil
}

// client returns the cached client for the option fingerprint.
func (e *Engine) client(opts engine.Options) (*fasthttp.Client, error) {
	switch opts.Version {
	case "", "HTTP/1.1":
	default:
		return nil, errors.Unsupported(Name, "version", opts.Version)
	}

	key := fingerprint(opts)
	if c, ok := e.clients.Get(key); ok {
		return c, nil
	}

	c, err := e.newClient(opts)
	if err != nil {
		return nil, err
	}
	e.clients.Add(key, c)
	return c, nil
}

func (e *Engine) newClient(opts engine.Options) (*fasthttp.Client, error) {
	tlsCfg, err := opts.TLS.Build()
	if err != nil {
		return nil, errors.InvalidInput("ssl", err.Error()).WithCause(err)
	}

	c := &fasthttp.Client{
		Name:                          "httpbridge",
		Dial:                          e.dialer(opts),
		TLSConfig:                     tlsCfg,
		MaxConnsPerHost:               e.cfg.MaxConnsPerHost,
		MaxIdleConnDuration:           e.cfg.IdleConnTimeout,
		MaxIdemponentCallAttempts:     e.cfg.RetryMax + 1,
		DisableHeaderNamesNormalizing: opts.Relaxed,
		DisablePathNormalizing:        opts.Relaxed,
	}
	if opts.AutoRedirect && opts.Timeout > 0 {
		// DoRedirects has no deadline of its own.
		c.ReadTimeout = opts.Timeout
		c.WriteTimeout = opts.Timeout
	}
	return c, nil
}

func (e *Engine) dialer(opts engine.Options) fasthttp.DialFunc {
	if e.dial != nil {
		return e.dial
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	if e.proxy != "" {
		addr := e.proxy
		if pa := opts.ProxyAuth; pa != nil {
			addr = pa.Username + ":" + pa.Password + "@" + addr
		}
		return fasthttpproxy.FasthttpHTTPDialerTimeout(addr, connectTimeout)
	}
	return func(addr string) (net.Conn, error) {
		return fasthttp.DialTimeout(addr, connectTimeout)
	}
}

// fingerprint keys the client cache by every option that shapes it.
func fingerprint(opts engine.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ct=%s;relaxed=%t;", opts.ConnectTimeout, opts.Relaxed)
	if opts.AutoRedirect {
		fmt.Fprintf(&b, "redirect=%s;", opts.Timeout)
	}
	if opts.TLS != nil {
		fmt.Fprintf(&b, "tls=%+v;", *opts.TLS)
	}
	if opts.ProxyAuth != nil {
		fmt.Fprintf(&b, "proxy=%s:%s;", opts.ProxyAuth.Username, opts.ProxyAuth.Password)
	}
	return b.String()
}

// callTimeout is the smaller of the option timeout and the context deadline.
func callTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); timeout <= 0 || rem < timeout {
			return max(rem, time.Millisecond)
		}
	}
	return timeout
}

func statusLine(resp *fasthttp.Response) engine.StatusLine {
	version := "HTTP/1.1"
	if !resp.Header.IsHTTP11() {
		version = "HTTP/1.0"
	}
	code := resp.StatusCode()
	return engine.StatusLine{
		Version: version,
		Code:    code,
		Reason:  fasthttp.StatusMessage(code),
	}
}

func fields(h *fasthttp.ResponseHeader) []engine.Field {
	out := make([]engine.Field, 0, h.Len())
	h.VisitAll(func(k, v []byte) {
		out = append(out, engine.Field{
			Key:   append([]byte(nil), k...),
			Value: append([]byte(nil), v...),
		})
	})
	return out
}
