package auth

import "testing"

func TestPolicy_Bypassed(t *testing.T) {
	policy := NewPolicy([]string{"/mcp/info", "/healthz", ""})

	tests := []struct {
		path string
		want bool
	}{
		{path: "/mcp/info", want: true},
		{path: "/mcp/info/extra", want: true}, // prefix match
		{path: "/healthz", want: true},
		{path: "/mcp", want: false},
		{path: "/", want: false},
		{path: "", want: false}, // empty rule must not match everything
		{path: "/protected", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := policy.Bypassed(tt.path); got != tt.want {
				t.Errorf("Bypassed(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestPolicy_Empty(t *testing.T) {
	if NewPolicy(nil).Bypassed("/anything") {
		t.Error("empty policy bypassed a path")
	}
	var p *Policy
	if p.Bypassed("/anything") {
		t.Error("nil policy bypassed a path")
	}
}
