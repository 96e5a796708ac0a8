package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

const (
	// DefaultElementTimeout applies when a call gives no positive timeout
	DefaultElementTimeout = 20 * time.Second

	// DefaultPollInterval is how often element conditions are re-checked
	DefaultPollInterval = 500 * time.Millisecond
)

// Strategy is an element location strategy.
type Strategy string

const (
	ByID              Strategy = "id"
	ByCSSSelector     Strategy = "cssSelector"
	ByName            Strategy = "name"
	ByClassName       Strategy = "className"
	ByTag             Strategy = "tag"
	ByLinkText        Strategy = "linkText"
	ByPartialLinkText Strategy = "partialLinkText"
	ByXPath           Strategy = "xpath"
)

var strategies = map[string]Strategy{
	"id":              ByID,
	"cssselector":     ByCSSSelector,
	"css":             ByCSSSelector,
	"name":            ByName,
	"classname":       ByClassName,
	"tag":             ByTag,
	"tagname":         ByTag,
	"linktext":        ByLinkText,
	"partiallinktext": ByPartialLinkText,
	"xpath":           ByXPath,
}

// ParseStrategy parses a strategy name. Matching ignores case.
func ParseStrategy(s string) (Strategy, error) {
	st, ok := strategies[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", newFault(InvalidLocatorStrategy,
			map[string]interface{}{"strategy": s},
			"invalid locator strategy %q (must be one of id, cssSelector, name, className, tag, linkText, partialLinkText, xpath)", s)
	}
	return st, nil
}

// Locator identifies a page element.
type Locator struct {
	Strategy Strategy
	Value    string
}

// NewLocator parses strategy and pairs it with value.
func NewLocator(strategy, value string) (Locator, error) {
	st, err := ParseStrategy(strategy)
	if err != nil {
		return Locator{}, err
	}
	return Locator{Strategy: st, Value: value}, nil
}

func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Value
}

// Query translates the locator into a native driver query.
func (l Locator) Query() (driver.By, error) {
	switch l.Strategy {
	case ByID:
		return driver.By{Using: driver.UsingCSSSelector, Value: attrSelector("id", "=", l.Value)}, nil
	case ByName:
		return driver.By{Using: driver.UsingCSSSelector, Value: attrSelector("name", "=", l.Value)}, nil
	case ByClassName:
		return driver.By{Using: driver.UsingCSSSelector, Value: attrSelector("class", "~=", l.Value)}, nil
	case ByCSSSelector:
		return driver.By{Using: driver.UsingCSSSelector, Value: l.Value}, nil
	case ByTag:
		return driver.By{Using: driver.UsingTagName, Value: l.Value}, nil
	case ByLinkText:
		return driver.By{Using: driver.UsingLinkText, Value: l.Value}, nil
	case ByPartialLinkText:
		return driver.By{Using: driver.UsingPartialLinkText, Value: l.Value}, nil
	case ByXPath:
		return driver.By{Using: driver.UsingXPath, Value: l.Value}, nil
	}
	return driver.By{}, newFault(InvalidLocatorStrategy,
		map[string]interface{}{"strategy": string(l.Strategy)},
		"invalid locator strategy %q", l.Strategy)
}

func (l Locator) details(timeout time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"strategy":        string(l.Strategy),
		"value":           l.Value,
		"timeout_seconds": int(timeout / time.Second),
	}
}

func attrSelector(attr, op, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return "[" + attr + op + `"` + value + `"]`
}

// Resolver finds elements with bounded waiting.
type Resolver struct {
	// PollInterval between condition checks; DefaultPollInterval when zero
	PollInterval time.Duration

	// DefaultTimeout replaces absent or non-positive timeouts; DefaultElementTimeout when zero
	DefaultTimeout time.Duration
}

// EffectiveTimeout converts a caller supplied timeout in seconds to the wait
// actually applied.
func (r *Resolver) EffectiveTimeout(seconds *int) time.Duration {
	if seconds == nil || *seconds <= 0 {
		if r.DefaultTimeout > 0 {
			return r.DefaultTimeout
		}
		return DefaultElementTimeout
	}
	return time.Duration(*seconds) * time.Second
}

func (r *Resolver) interval() time.Duration {
	if r.PollInterval > 0 {
		return r.PollInterval
	}
	return DefaultPollInterval
}

// Find waits until an element matching loc is present and visible.
func (r *Resolver) Find(ctx context.Context, h driver.Handle, loc Locator, timeout time.Duration) (driver.Element, error) {
	by, err := loc.Query()
	if err != nil {
		return nil, err
	}

	var found driver.Element
	err = r.poll(ctx, timeout, func() (bool, error) {
		el, err := h.FindElement(by)
		if err != nil || el == nil {
			return false, err
		}
		visible, err := el.IsVisible()
		if err != nil {
			return false, err
		}
		if visible {
			found = el
		}
		return visible, nil
	})
	switch {
	case err == nil:
		return found, nil
	case errors.Is(err, errWaitExpired):
		return nil, newFault(ElementNotFound, loc.details(timeout),
			"no visible element found by %s %q within %d seconds", loc.Strategy, loc.Value, int(timeout/time.Second))
	default:
		return nil, engineFault(err, loc.details(timeout), "failed to locate element by %s %q", loc.Strategy, loc.Value)
	}
}

// WaitClickable waits until el is visible and enabled.
func (r *Resolver) WaitClickable(ctx context.Context, el driver.Element, loc Locator, timeout time.Duration) error {
	err := r.poll(ctx, timeout, func() (bool, error) {
		visible, err := el.IsVisible()
		if err != nil || !visible {
			return false, err
		}
		return el.IsEnabled()
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errWaitExpired):
		return newFault(NotClickableWithinTimeout, loc.details(timeout),
			"element found by %s %q was not clickable within %d seconds", loc.Strategy, loc.Value, int(timeout/time.Second))
	default:
		return engineFault(err, loc.details(timeout), "failed to check element by %s %q", loc.Strategy, loc.Value)
	}
}

var errWaitExpired = errors.New("wait expired")

// poll runs cond until it reports true, returns an error, or the timeout
// passes. The first check happens immediately.
func (r *Resolver) poll(ctx context.Context, timeout time.Duration, cond func() (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(r.interval())
	defer ticker.Stop()

	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errWaitExpired
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
