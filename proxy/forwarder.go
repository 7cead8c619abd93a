// Package proxy forwards authenticated requests to an upstream MCP
// server, streaming responses back without buffering. It sits behind
// the auth middleware so the upstream never needs to understand bearer
// tokens itself.
package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonwraymond/weathermcp/observe"
)

// ErrBadUpstream indicates the upstream base URL could not be parsed.
var ErrBadUpstream = errors.New("proxy: invalid upstream URL")

// Hop-by-hop headers are meaningful only for a single transport link
// and must not be forwarded (RFC 9110 section 7.6.1).
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Forwarder relays requests to a fixed upstream base URL.
//
// Each proxied call is a single attempt; retry policy belongs to the
// caller. The upstream request shares the inbound request's context,
// so a client disconnect aborts the upstream call and releases its
// connection.
type Forwarder struct {
	upstream *url.URL
	client   *http.Client
	logger   observe.Logger
}

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithClient overrides the HTTP client. The client must not set a
// global timeout; streaming responses can legitimately outlive any
// fixed budget, and cancellation comes from the inbound request.
func WithClient(c *http.Client) Option {
	return func(f *Forwarder) {
		if c != nil {
			f.client = c
		}
	}
}

// WithLogger sets the forwarder logger.
func WithLogger(l observe.Logger) Option {
	return func(f *Forwarder) {
		if l != nil {
			f.logger = l.With(observe.String("component", "proxy"))
		}
	}
}

// NewForwarder creates a forwarder for the given upstream base URL.
func NewForwarder(upstream string, opts ...Option) (*Forwarder, error) {
	u, err := url.Parse(upstream)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadUpstream, upstream)
	}

	f := &Forwarder{
		upstream: u,
		client:   &http.Client{},
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// ServeHTTP implements http.Handler.
func (f *Forwarder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := *f.upstream
	target.Path = singleJoin(f.upstream.Path, r.URL.Path)
	target.RawQuery = r.URL.RawQuery

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		f.writeError(w, http.StatusBadGateway, err)
		return
	}
	copyHeaders(outReq.Header, r.Header)

	resp, err := f.client.Do(outReq)
	if err != nil {
		f.logger.Warn(r.Context(), "upstream request failed",
			observe.String("target", target.String()), observe.Err(err))
		f.writeError(w, http.StatusBadGateway, err)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	f.stream(w, resp.Body)
}

// stream copies the upstream body to the client, flushing after each
// chunk so event streams arrive promptly.
func (f *Forwarder) stream(w http.ResponseWriter, body io.Reader) {
	rc := http.NewResponseController(w)
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			_ = rc.Flush()
		}
		if err != nil {
			return
		}
	}
}

func (f *Forwarder) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"detail": "Bad Gateway: " + err.Error(),
	})
}

// copyHeaders copies src into dst, skipping hop-by-hop headers and any
// header named by the Connection header.
func copyHeaders(dst, src http.Header) {
	dropped := make(map[string]bool, len(hopByHopHeaders))
	for _, h := range hopByHopHeaders {
		dropped[h] = true
	}
	for _, conn := range src.Values("Connection") {
		for _, name := range strings.Split(conn, ",") {
			if name = strings.TrimSpace(name); name != "" {
				dropped[http.CanonicalHeaderKey(name)] = true
			}
		}
	}

	for name, values := range src {
		if dropped[name] {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func singleJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case strings.HasSuffix(a, "/") && strings.HasPrefix(b, "/"):
		return a + b[1:]
	case !strings.HasSuffix(a, "/") && !strings.HasPrefix(b, "/") && b != "":
		return a + "/" + b
	default:
		return a + b
	}
}

var _ http.Handler = (*Forwarder)(nil)
