package auth

import "strings"

// Policy is the set of request paths exempt from authentication.
// A request path is bypassed when it exactly equals or is prefixed by
// any configured path; the rules form a union, so ordering is
// irrelevant. Immutable after construction.
type Policy struct {
	paths []string
}

// NewPolicy creates a bypass policy from the given paths. Empty
// entries are ignored.
func NewPolicy(paths []string) *Policy {
	p := &Policy{paths: make([]string, 0, len(paths))}
	for _, path := range paths {
		if path == "" {
			continue
		}
		p.paths = append(p.paths, path)
	}
	return p
}

// Bypassed reports whether path is exempt from authentication.
func (p *Policy) Bypassed(path string) bool {
	if p == nil {
		return false
	}
	for _, b := range p.paths {
		if path == b || strings.HasPrefix(path, b) {
			return true
		}
	}
	return false
}
