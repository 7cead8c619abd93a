package auth

import (
	"context"

	"github.com/jonwraymond/weathermcp/observe"
	"github.com/jonwraymond/weathermcp/token"
)

// Config is the immutable authentication configuration for a Gate.
// It is constructed once at startup; the gate never re-reads
// environment or files.
type Config struct {
	// Enabled is the global authentication flag. When false every
	// request is allowed.
	Enabled bool

	// Secret is the shared signing secret. An empty secret with
	// authentication enabled puts the gate in a fail-safe deny-all
	// state rather than allowing anything through.
	Secret string

	// BypassPaths lists request paths (exact or prefix) exempt from
	// authentication.
	BypassPaths []string
}

// Gate decides whether a request may proceed. Safe for concurrent use;
// all state is set at construction and read-only afterward.
type Gate struct {
	enabled  bool
	secret   string
	policy   *Policy
	verifier *token.Verifier
	logger   observe.Logger
	metrics  *observe.AuthMetrics
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithVerifier overrides the token verifier, letting tests inject a
// fixed clock.
func WithVerifier(v *token.Verifier) GateOption {
	return func(g *Gate) {
		if v != nil {
			g.verifier = v
		}
	}
}

// WithLogger sets the audit logger.
func WithLogger(l observe.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l.With(observe.String("component", "auth.gate"))
		}
	}
}

// WithMetrics sets the decision metrics recorder.
func WithMetrics(m *observe.AuthMetrics) GateOption {
	return func(g *Gate) { g.metrics = m }
}

// NewGate creates a gate from cfg.
func NewGate(cfg Config, opts ...GateOption) *Gate {
	g := &Gate{
		enabled:  cfg.Enabled,
		secret:   cfg.Secret,
		policy:   NewPolicy(cfg.BypassPaths),
		verifier: token.NewVerifier(),
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide evaluates one request and returns the terminal decision.
// States are checked in strict order; the first match wins:
// disabled, bypassed, misconfigured, missing header, malformed header,
// empty token, invalid token, valid token. Every decision is written
// to the audit log with a redacted token prefix.
func (g *Gate) Decide(ctx context.Context, path string, headers HeaderLookup) Decision {
	tok, d := g.evaluate(path, headers)
	g.audit(ctx, path, tok, d)
	if g.metrics != nil {
		g.metrics.RecordDecision(ctx, path, string(d.Reason), d.Allowed)
	}
	return d
}

func (g *Gate) evaluate(path string, headers HeaderLookup) (string, Decision) {
	if !g.enabled {
		return "", allow(ReasonDisabled, nil)
	}

	if g.policy.Bypassed(path) {
		return "", allow(ReasonBypassed, nil)
	}

	// Fail safe: with no secret there is nothing to verify against, so
	// deny everything rather than letting unverifiable tokens through.
	if g.secret == "" {
		return "", deny(ReasonMisconfigured, detailMisconfigured)
	}

	tok, err := ExtractBearer(headers)
	switch err {
	case nil:
	case ErrMissingHeader:
		return "", deny(ReasonMissingHeader, detailMissingHeader)
	default:
		return "", deny(ReasonMalformedHeader, detailMalformedHeader)
	}

	if tok == "" {
		return tok, deny(ReasonEmptyToken, detailEmptyToken)
	}

	claims, ok := g.verifier.Validate(tok, g.secret)
	if !ok {
		return tok, deny(ReasonInvalidToken, detailInvalidToken)
	}

	return tok, allow(ReasonValidToken, claims)
}

func (g *Gate) audit(ctx context.Context, path, tok string, d Decision) {
	fields := []observe.Field{
		observe.String("path", path),
		observe.String("reason", string(d.Reason)),
		observe.Bool("allowed", d.Allowed),
	}
	if tok != "" {
		fields = append(fields, observe.String("token_prefix", redactToken(tok)))
	}

	switch {
	case d.Reason == ReasonMisconfigured:
		g.logger.Error(ctx, "authentication misconfigured: denying request", fields...)
	case !d.Allowed:
		g.logger.Warn(ctx, "request denied", fields...)
	default:
		g.logger.Info(ctx, "request allowed", fields...)
	}
}

// redactToken returns a short prefix safe for logs. The full token
// never appears in log output.
func redactToken(tok string) string {
	const keep = 8
	if len(tok) <= keep {
		return "..."
	}
	return tok[:keep] + "..."
}
