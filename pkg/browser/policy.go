package browser

import (
	"fmt"

	"github.com/gobwas/glob"
)

// NavigationPolicy decides which URLs sessions may navigate to.
// Denied patterns take precedence; with no allowed patterns every URL that is
// not denied is allowed.
type NavigationPolicy struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewNavigationPolicy compiles URL glob patterns such as
// "https://*.example.com/**".
func NewNavigationPolicy(allowed, denied []string) (*NavigationPolicy, error) {
	p := &NavigationPolicy{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		p.allowed = append(p.allowed, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		p.denied = append(p.denied, g)
	}

	return p, nil
}

// Allows reports whether url may be loaded. A nil policy allows everything.
func (p *NavigationPolicy) Allows(url string) bool {
	if p == nil {
		return true
	}

	for _, g := range p.denied {
		if g.Match(url) {
			return false
		}
	}

	if len(p.allowed) == 0 {
		return true
	}

	for _, g := range p.allowed {
		if g.Match(url) {
			return true
		}
	}
	return false
}
