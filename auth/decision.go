package auth

import "net/http"

// Reason classifies the outcome of a gate evaluation.
type Reason string

const (
	// ReasonDisabled means authentication is globally disabled.
	ReasonDisabled Reason = "DISABLED"
	// ReasonBypassed means the request path matched a bypass rule.
	ReasonBypassed Reason = "BYPASSED"
	// ReasonValidToken means a correctly signed, unexpired token was presented.
	ReasonValidToken Reason = "VALID_TOKEN"
	// ReasonMissingHeader means no Authorization header was present.
	ReasonMissingHeader Reason = "MISSING_HEADER"
	// ReasonMalformedHeader means the Authorization header was not a Bearer value.
	ReasonMalformedHeader Reason = "MALFORMED_HEADER"
	// ReasonEmptyToken means the bearer token was empty after prefix stripping.
	ReasonEmptyToken Reason = "EMPTY_TOKEN"
	// ReasonInvalidToken covers both forged and expired tokens; the two
	// are deliberately not distinguished in responses.
	ReasonInvalidToken Reason = "INVALID_TOKEN"
	// ReasonMisconfigured means the shared secret is empty while
	// authentication is enabled.
	ReasonMisconfigured Reason = "SERVER_MISCONFIGURED"
)

// Denial detail strings. Each 401-class reason carries a distinct
// message so the classes can be told apart in logs.
const (
	detailMissingHeader   = "Unauthorized: Missing Bearer Token"
	detailMalformedHeader = "Unauthorized: Malformed Authorization Header"
	detailEmptyToken      = "Unauthorized: Empty Bearer Token"
	detailInvalidToken    = "Unauthorized: Invalid Bearer Token"
	detailMisconfigured   = "Server Misconfiguration: authentication secret is not set"
)

// Decision is the immutable result of evaluating one request.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Reason is the terminal state the gate reached.
	Reason Reason

	// Claims holds the decoded token claims, only for ReasonValidToken.
	Claims map[string]any

	// Detail is the human-readable denial message, empty on allow.
	Detail string
}

// Status maps the decision to an HTTP status code: 200 on allow, 500
// for misconfiguration, 401 otherwise.
func (d Decision) Status() int {
	switch {
	case d.Allowed:
		return http.StatusOK
	case d.Reason == ReasonMisconfigured:
		return http.StatusInternalServerError
	default:
		return http.StatusUnauthorized
	}
}

func allow(reason Reason, claims map[string]any) Decision {
	return Decision{Allowed: true, Reason: reason, Claims: claims}
}

func deny(reason Reason, detail string) Decision {
	return Decision{Reason: reason, Detail: detail}
}
