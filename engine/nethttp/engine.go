package nethttp

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/http2"

	"github.com/kbukum/httpbridge/engine"
	"github.com/kbukum/httpbridge/errors"
	"github.com/kbukum/httpbridge/logger"
)

// Name is the engine kind.
const Name = "nethttp"

const readChunkSize = 32 << 10

// Engine is a net/http backed engine.
type Engine struct {
	cfg        Config
	proxy      func(*http.Request) (*url.URL, error)
	transports *lru.Cache[string, *http.Transport]
	log        *logger.Logger
	closed     atomic.Bool
}

// New creates an engine from cfg.
func New(cfg Config) (*Engine, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proxy := http.ProxyFromEnvironment
	if cfg.Proxy != "" {
		u, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("nethttp: invalid proxy url: %w", err)
		}
		proxy = http.ProxyURL(u)
	}

	transports, err := lru.NewWithEvict(cfg.TransportCacheSize, func(_ string, t *http.Transport) {
		t.CloseIdleConnections()
	})
	if err != nil {
		return nil, fmt.Errorf("nethttp: transport cache: %w", err)
	}

	return &Engine{
		cfg:        cfg,
		proxy:      proxy,
		transports: transports,
		log:        logger.Get(Name),
	}, nil
}

// Name returns the engine kind.
func (e *Engine) Name() string { return Name }

// IsAvailable reports whether the engine is open.
func (e *Engine) IsAvailable(_ context.Context) bool { return !e.closed.Load() }

// Close drops all cached transports and their idle connections.
func (e *Engine) Close() error {
	e.closed.Store(true)
	e.transports.Purge()
	return nil
}

// Execute performs the call and reads the full response body.
func (e *Engine) Execute(ctx context.Context, call *engine.Call) (*engine.Response, error) {
	opts := call.Options
	if opts.Relaxed {
		e.log.Debug("relaxed parsing is not supported by net/http, ignoring", nil)
	}

	transport, err := e.transport(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := buildRequest(ctx, call)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport:     transport,
		CheckRedirect: redirectPolicy(opts.AutoRedirect),
	}

	res, err := e.do(client, req, call)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := readChunks(res.Body)
	if err != nil {
		return nil, classify(ctx, err)
	}

	return &engine.Response{
		Status: engine.StatusLine{
			Version: res.Proto,
			Code:    res.StatusCode,
			Reason:  reason(res),
		},
		Headers: fields(res.Header),
		Body:    body,
	}, nil
}

// transport returns the cached transport for the option fingerprint.
func (e *Engine) transport(opts engine.Options) (*http.Transport, error) {
	key := fingerprint(opts)
	if t, ok := e.transports.Get(key); ok {
		return t, nil
	}

	t, err := e.newTransport(opts)
	if err != nil {
		return nil, err
	}
	e.transports.Add(key, t)
	return t, nil
}

func (e *Engine) newTransport(opts engine.Options) (*http.Transport, error) {
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		Proxy:                 e.proxy,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          e.cfg.MaxIdleConns,
		MaxConnsPerHost:       e.cfg.MaxConnsPerHost,
		IdleConnTimeout:       e.cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   connectTimeout,
		ExpectContinueTimeout: time.Second,
	}

	tlsCfg, err := opts.TLS.Build()
	if err != nil {
		return nil, errors.InvalidInput("ssl", err.Error()).WithCause(err)
	}
	if tlsCfg != nil {
		t.TLSClientConfig = tlsCfg
	}

	if opts.ProxyAuth != nil {
		t.ProxyConnectHeader = http.Header{
			"Proxy-Authorization": {basicAuth(opts.ProxyAuth)},
		}
	}

	switch opts.Version {
	case "":
		t.ForceAttemptHTTP2 = true
	case "HTTP/1.0", "HTTP/1.1":
		// A non-nil empty map disables the automatic HTTP/2 upgrade.
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	case "HTTP/2":
		if _, err := http2.ConfigureTransports(t); err != nil {
			return nil, fmt.Errorf("nethttp: configure http2: %w", err)
		}
	default:
		return nil, errors.Unsupported(Name, "version", opts.Version)
	}
	return t, nil
}

// fingerprint keys the transport cache by every option that shapes it.
func fingerprint(opts engine.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ct=%s;v=%s;", opts.ConnectTimeout, opts.Version)
	if opts.TLS != nil {
		fmt.Fprintf(&b, "tls=%+v;", *opts.TLS)
	}
	if opts.ProxyAuth != nil {
		fmt.Fprintf(&b, "proxy=%s:%s;", opts.ProxyAuth.Username, opts.ProxyAuth.Password)
	}
	return b.String()
}

func redirectPolicy(follow bool) func(*http.Request, []*http.Request) error {
	if follow {
		return nil
	}
	return func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

func basicAuth(pa *engine.ProxyAuth) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(pa.Username+":"+pa.Password))
}

func readChunks(r io.Reader) (engine.Chunks, error) {
	var chunks engine.Chunks
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			chunks = append(chunks, chunk)
		}
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func reason(res *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(res.Status, strconv.Itoa(res.StatusCode)))
}

func fields(h http.Header) []engine.Field {
	out := make([]engine.Field, 0, len(h))
	for k, vs := range h {
		for _, v := range vs {
			out = append(out, engine.Field{Key: []byte(k), Value: []byte(v)})
		}
	}
	return out
}
