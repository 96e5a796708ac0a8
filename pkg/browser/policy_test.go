package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationPolicy(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		denied  []string
		url     string
		want    bool
	}{
		{"no rules", nil, nil, "https://anything.test/x", true},
		{"allowed host", []string{"https://example.com/**"}, nil, "https://example.com/docs/a", true},
		{"other host", []string{"https://example.com/**"}, nil, "https://evil.test/", false},
		{"subdomain wildcard", []string{"https://*.example.com/**"}, nil, "https://docs.example.com/page", true},
		{"wildcard stays in host", []string{"https://*.example.com/**"}, nil, "https://evil.test/.example.com/x", false},
		{"denied wins", []string{"https://**"}, []string{"https://internal.corp/**"}, "https://internal.corp/admin", false},
		{"deny only", nil, []string{"file://**"}, "file:///etc/passwd", false},
		{"deny only passes others", nil, []string{"file://**"}, "https://example.com/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewNavigationPolicy(tt.allowed, tt.denied)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Allows(tt.url))
		})
	}
}

func TestNavigationPolicyInvalidPattern(t *testing.T) {
	_, err := NewNavigationPolicy([]string{"https://[unclosed"}, nil)
	assert.Error(t, err)
}

func TestNilNavigationPolicyAllows(t *testing.T) {
	var p *NavigationPolicy
	assert.True(t, p.Allows("https://example.com"))
}
