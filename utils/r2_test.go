package utils

import "testing"

func TestPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.agentgift.ai", "reports/a.xlsx", "https://cdn.agentgift.ai/reports/a.xlsx"},
		{"https://cdn.agentgift.ai/", "/reports/a.xlsx", "https://cdn.agentgift.ai/reports/a.xlsx"},
	}
	for _, tt := range tests {
		if got := PublicURL(tt.base, tt.key); got != tt.want {
			t.Errorf("PublicURL(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
		}
	}
}

func TestR2Endpoint(t *testing.T) {
	if got := r2Endpoint("abc123"); got != "https://abc123.r2.cloudflarestorage.com" {
		t.Errorf("r2Endpoint() = %q", got)
	}
}
