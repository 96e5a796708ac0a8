// Package pwdriver implements the driver boundary on top of Playwright.
//
// Browser kinds map onto Playwright browser types: chrome runs Chromium,
// firefox runs Firefox and safari runs WebKit. Each launch gets its own
// browser process, one isolated context and an initial blank page. Pages of
// that context are the session's tabs.
package pwdriver

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// Options configures the Playwright runtime.
type Options struct {
	// Install downloads the driver and browsers before the first launch
	Install bool

	// Browsers limits which browsers are installed (chromium, firefox, webkit).
	// Empty installs Playwright's defaults.
	Browsers []string

	// Output receives installer and driver output. Nil discards it.
	Output io.Writer
}

// Launcher starts Playwright-controlled browsers.
// The Playwright driver process is started lazily on the first launch.
type Launcher struct {
	mu          sync.Mutex
	opts        Options
	playwright  *playwright.Playwright
	initialized bool
}

// NewLauncher creates a launcher. No processes are started until Launch.
func NewLauncher(opts Options) *Launcher {
	return &Launcher{opts: opts}
}

// Initialize installs (when configured) and starts the Playwright driver.
// It is safe to call more than once.
func (l *Launcher) Initialize() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initLocked()
}

func (l *Launcher) initLocked() error {
	if l.initialized {
		return nil
	}

	out := l.opts.Output
	if out == nil {
		out = io.Discard
	}

	// stdout belongs to the tool transport, so driver chatter never goes there
	runOpts := &playwright.RunOptions{
		Verbose:  false,
		Stdout:   out,
		Stderr:   out,
		Browsers: l.opts.Browsers,
	}

	if l.opts.Install {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	l.playwright = pw
	l.initialized = true
	return nil
}

// Launch starts a browser of the given kind. Headless switches in args
// ("--headless", "--headless=...") select Playwright's headless mode; all
// other arguments are passed to the browser verbatim and in order.
func (l *Launcher) Launch(ctx context.Context, kind driver.Kind, args []string) (driver.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if err := l.initLocked(); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	browserType, err := l.browserType(kind)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	headless, rest := splitHeadless(args)
	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     rest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", kind, err)
	}

	browserContext, err := browser.NewContext()
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return newHandle(browser, browserContext, page), nil
}

// Close stops the Playwright driver. Browsers launched earlier must be quit
// before calling Close.
func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized || l.playwright == nil {
		return nil
	}
	if err := l.playwright.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	l.initialized = false
	l.playwright = nil
	return nil
}

func (l *Launcher) browserType(kind driver.Kind) (playwright.BrowserType, error) {
	switch kind {
	case driver.Chrome:
		return l.playwright.Chromium, nil
	case driver.Firefox:
		return l.playwright.Firefox, nil
	case driver.Safari:
		return l.playwright.WebKit, nil
	default:
		return nil, fmt.Errorf("browser kind %q is not supported by playwright", kind)
	}
}

// splitHeadless separates headless switches from the remaining arguments.
func splitHeadless(args []string) (bool, []string) {
	headless := false
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--headless" || strings.HasPrefix(arg, "--headless=") {
			headless = true
			continue
		}
		rest = append(rest, arg)
	}
	return headless, rest
}
