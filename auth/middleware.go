package auth

import (
	"encoding/json"
	"net/http"
)

// denialBody is the JSON response body for denied requests.
type denialBody struct {
	Detail string `json:"detail"`
}

// Middleware gates every request through gate before dispatching to
// next. Denied requests receive a JSON body {"detail": ...} with a 401
// status, or 500 when the server is misconfigured. On a valid token
// the identity is attached to the request context for downstream
// handlers.
func Middleware(gate *Gate, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := gate.Decide(r.Context(), r.URL.Path, MapLookup(r.Header))
		if !d.Allowed {
			WriteDenial(w, d)
			return
		}
		if d.Reason == ReasonValidToken {
			r = r.WithContext(WithIdentity(r.Context(), IdentityFromClaims(d.Claims)))
		}
		next.ServeHTTP(w, r)
	})
}

// WriteDenial writes the structured denial response for d.
func WriteDenial(w http.ResponseWriter, d Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status())
	_ = json.NewEncoder(w).Encode(denialBody{Detail: d.Detail})
}
