package auth

import "net/textproto"

// HeaderLookup provides read access to request headers. It is the only
// capability the gate needs from a host framework; net/http, a proxy,
// or a test can all satisfy it with a plain header map.
type HeaderLookup interface {
	// Get returns the first value for the given header name using
	// case-insensitive matching. ok is false when the header is absent,
	// which is distinct from a present-but-empty value.
	Get(name string) (value string, ok bool)
}

// MapLookup adapts an http.Header-shaped map to HeaderLookup.
type MapLookup map[string][]string

// Get returns the first value for name, canonicalizing the key the way
// net/http does.
func (m MapLookup) Get(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	values, ok := m[textproto.CanonicalMIMEHeaderKey(name)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

var _ HeaderLookup = MapLookup(nil)
