package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// DefaultScriptElementTimeout bounds the element wait of parameterized scripts.
const DefaultScriptElementTimeout = 5 * time.Second

// Commands implements every browser operation against the current session.
// Each method returns a human readable result or a *Fault.
type Commands struct {
	registry *Registry
	resolver *Resolver
	tabs     Tabs

	// Policy restricts navigation targets; nil allows everything
	Policy *NavigationPolicy

	// ScreenshotDir receives screenshots taken without an explicit path.
	// Empty means <home>/.mcp/screenshots.
	ScreenshotDir string

	// ScriptElementTimeout is the element wait for parameterized scripts
	ScriptElementTimeout time.Duration

	now func() time.Time
}

// NewCommands creates the dispatcher over a registry and resolver.
func NewCommands(registry *Registry, resolver *Resolver) *Commands {
	if resolver == nil {
		resolver = &Resolver{}
	}
	return &Commands{
		registry:             registry,
		resolver:             resolver,
		ScriptElementTimeout: DefaultScriptElementTimeout,
		now:                  time.Now,
	}
}

// Registry returns the underlying session registry.
func (c *Commands) Registry() *Registry {
	return c.registry
}

// Open starts a browser session and makes it current.
func (c *Commands) Open(ctx context.Context, kind string, opts Options) (string, error) {
	s, err := c.registry.Open(ctx, kind, opts)
	if err != nil {
		return "", err
	}
	return "Browser started successfully with session_id: " + s.ID, nil
}

// Close quits the current session.
func (c *Commands) Close(ctx context.Context) (string, error) {
	id, err := c.registry.Close(ctx)
	if err != nil {
		return "", err
	}
	return "Browser session closed successfully with id: " + id, nil
}

// ListSessions describes every open session, marking the current one.
func (c *Commands) ListSessions() string {
	sessions := c.registry.Sessions()
	if len(sessions) == 0 {
		return "No browser sessions are open."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d browser session(s) open:\n", len(sessions))
	for _, s := range sessions {
		marker := " "
		if s.Current {
			marker = "*"
		}
		mode := "headed"
		if s.Headless {
			mode = "headless"
		}
		fmt.Fprintf(&b, "%s %s (%s, %s, opened %s)\n", marker, s.ID, s.Kind, mode, s.CreatedAt.Format(time.RFC3339))
	}
	return strings.TrimRight(b.String(), "\n")
}

// NormalizeURL prefixes https:// when url carries no scheme separator.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}

// Navigate loads url in the focused window of the current session.
func (c *Commands) Navigate(ctx context.Context, url string) (string, error) {
	s, err := c.registry.Current()
	if err != nil {
		return "", err
	}

	target := NormalizeURL(url)
	if !c.Policy.Allows(target) {
		return "", newFault(NavigationBlocked, map[string]interface{}{"url": target, "session_id": s.ID},
			"navigation to %s is blocked by the navigation policy", target)
	}

	if err := s.Handle.Navigate(target); err != nil {
		return "", engineFault(err, map[string]interface{}{"url": target, "session_id": s.ID},
			"failed to navigate to %s in session %s", target, s.ID)
	}
	return "Successfully navigated to " + target, nil
}

// target is a located element in the current session.
type target struct {
	session *Session
	element driver.Element
	locator Locator
	timeout time.Duration
}

func (t target) fault(err error, action string) error {
	details := t.locator.details(t.timeout)
	details["session_id"] = t.session.ID
	return engineFault(err, details, "failed to %s element by %s %q in session %s",
		action, t.locator.Strategy, t.locator.Value, t.session.ID)
}

// locate resolves the current session and waits for a visible element.
func (c *Commands) locate(ctx context.Context, strategy, value string, timeout time.Duration) (target, error) {
	s, err := c.registry.Current()
	if err != nil {
		return target{}, err
	}
	loc, err := NewLocator(strategy, value)
	if err != nil {
		return target{}, err
	}
	el, err := c.resolver.Find(ctx, s.Handle, loc, timeout)
	if err != nil {
		return target{}, err
	}
	return target{session: s, element: el, locator: loc, timeout: timeout}, nil
}

// Click waits for the element to be visible and then clickable before clicking.
func (c *Commands) Click(ctx context.Context, strategy, value string, timeout *int) (string, error) {
	wait := c.resolver.EffectiveTimeout(timeout)
	t, err := c.locate(ctx, strategy, value, wait)
	if err != nil {
		return "", err
	}
	if err := c.resolver.WaitClickable(ctx, t.element, t.locator, wait); err != nil {
		return "", err
	}
	if err := t.element.Click(); err != nil {
		return "", t.fault(err, "click")
	}
	return "Element clicked successfully.", nil
}

// SendKeys clears the element and types text into it.
func (c *Commands) SendKeys(ctx context.Context, strategy, value, text string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.Clear(); err != nil {
		return "", t.fault(err, "clear")
	}
	if err := t.element.SendKeys(text); err != nil {
		return "", t.fault(err, "type into")
	}
	return "Entered text into web element: " + text, nil
}

// Screenshot captures the focused window to outputPath, or to a timestamped
// file in the screenshot directory when outputPath is blank.
func (c *Commands) Screenshot(ctx context.Context, outputPath string) (string, error) {
	s, err := c.registry.Current()
	if err != nil {
		return "", err
	}

	data, err := s.Handle.Screenshot()
	if err != nil {
		return "", engineFault(err, map[string]interface{}{"session_id": s.ID},
			"failed to capture screenshot in session %s", s.ID)
	}

	path := strings.TrimSpace(outputPath)
	if path == "" {
		dir, err := c.screenshotDir()
		if err != nil {
			return "", &Fault{Kind: FilesystemFailure, Message: "failed to resolve screenshot directory", Err: err}
		}
		path = filepath.Join(dir, fmt.Sprintf("%d.png", c.now().UnixMilli()))
	}

	details := map[string]interface{}{"path": path, "session_id": s.ID}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", &Fault{Kind: FilesystemFailure, Message: "failed to create directory for " + path, Details: details, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", &Fault{Kind: FilesystemFailure, Message: "failed to write screenshot to " + path, Details: details, Err: err}
	}
	return "Screenshot captured successfully and saved to: " + path, nil
}

func (c *Commands) screenshotDir() (string, error) {
	if c.ScreenshotDir != "" {
		return c.ScreenshotDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mcp", "screenshots"), nil
}

// GetText returns the rendered text of the element.
func (c *Commands) GetText(ctx context.Context, strategy, value string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	text, err := t.element.Text()
	if err != nil {
		return "", t.fault(err, "read text of")
	}
	return text, nil
}

// Hover moves the mouse over the element.
func (c *Commands) Hover(ctx context.Context, strategy, value string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.Hover(); err != nil {
		return "", t.fault(err, "hover")
	}
	return "Moved mouse on the web element", nil
}

// DoubleClick double clicks the element.
func (c *Commands) DoubleClick(ctx context.Context, strategy, value string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.DoubleClick(); err != nil {
		return "", t.fault(err, "double click")
	}
	return "Double click performed successfully on the web element", nil
}

// RightClick opens the context menu on the element.
func (c *Commands) RightClick(ctx context.Context, strategy, value string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.RightClick(); err != nil {
		return "", t.fault(err, "right click")
	}
	return "Right click performed successfully on the web element", nil
}

// DragAndDrop drags the source element onto the target element. Both waits
// use the same timeout.
func (c *Commands) DragAndDrop(ctx context.Context, sourceStrategy, sourceValue, targetStrategy, targetValue string, timeout *int) (string, error) {
	wait := c.resolver.EffectiveTimeout(timeout)
	src, err := c.locate(ctx, sourceStrategy, sourceValue, wait)
	if err != nil {
		return "", err
	}
	dst, err := c.locate(ctx, targetStrategy, targetValue, wait)
	if err != nil {
		return "", err
	}
	if err := src.session.Handle.DragAndDrop(src.element, dst.element); err != nil {
		return "", engineFault(err, map[string]interface{}{
			"session_id":      src.session.ID,
			"source":          src.locator.String(),
			"target":          dst.locator.String(),
			"timeout_seconds": int(wait / time.Second),
		}, "failed to drag %s onto %s in session %s", src.locator, dst.locator, src.session.ID)
	}
	return "Source element dragged to target element successfully", nil
}

// PressKey presses a named key on the element.
func (c *Commands) PressKey(ctx context.Context, strategy, value, key string, timeout *int) (string, error) {
	k, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.Press(k); err != nil {
		return "", t.fault(err, "press "+key+" on")
	}
	return fmt.Sprintf("Keyboard key '%s' pressed successfully to the web element", strings.ToUpper(strings.TrimSpace(key))), nil
}

// UploadFile attaches a local file to a file input element.
func (c *Commands) UploadFile(ctx context.Context, strategy, value, filePath string, timeout *int) (string, error) {
	t, err := c.locate(ctx, strategy, value, c.resolver.EffectiveTimeout(timeout))
	if err != nil {
		return "", err
	}
	if err := t.element.SetFiles(filePath); err != nil {
		return "", t.fault(err, "upload "+filePath+" to")
	}
	return "File has been uploaded to the input web element", nil
}

// PageSource returns the page HTML. With clean set, scripts, styles and
// presentational attributes are removed and the result is cut to maxLength.
func (c *Commands) PageSource(ctx context.Context, clean bool, maxLength int) (string, error) {
	s, err := c.registry.Current()
	if err != nil {
		return "", err
	}

	src, err := s.Handle.PageSource()
	if err != nil {
		return "", engineFault(err, map[string]interface{}{"session_id": s.ID},
			"failed to fetch page source in session %s", s.ID)
	}
	if !clean {
		return src, nil
	}

	page, err := CleanPageSource(src, maxLength)
	if err != nil {
		return "", engineFault(err, map[string]interface{}{"session_id": s.ID}, "failed to clean page source")
	}
	if page.Truncated {
		return page.HTML + fmt.Sprintf("\n\n[page source truncated at %d characters]", maxLength), nil
	}
	return page.HTML, nil
}

// ExecuteScript runs script in the focused window. A script that reads
// arguments[...] receives the element found by strategy and value, which are
// then required.
func (c *Commands) ExecuteScript(ctx context.Context, script, strategy, value string) (string, error) {
	parameterized := strings.Contains(script, "arguments[")
	if parameterized && (strings.TrimSpace(strategy) == "" || value == "") {
		return "", newFault(MissingLocatorForParameterizedScript, nil,
			"locator strategy and locator value must be provided for parameterised javascript execution")
	}

	var (
		result interface{}
		err    error
		s      *Session
	)
	if parameterized {
		t, lerr := c.locate(ctx, strategy, value, c.scriptTimeout())
		if lerr != nil {
			return "", lerr
		}
		s = t.session
		result, err = s.Handle.ExecuteScript(script, t.element)
	} else {
		s, err = c.registry.Current()
		if err != nil {
			return "", err
		}
		result, err = s.Handle.ExecuteScript(script)
	}
	if err != nil {
		return "", engineFault(err, map[string]interface{}{"session_id": s.ID},
			"failed to execute javascript in session %s", s.ID)
	}

	if result == nil {
		return "Javascript executed successfully", nil
	}
	return fmt.Sprintf("Javascript executed successfully\nResult: %v", result), nil
}

func (c *Commands) scriptTimeout() time.Duration {
	if c.ScriptElementTimeout > 0 {
		return c.ScriptElementTimeout
	}
	return DefaultScriptElementTimeout
}

// Tabs opens, closes or selects tabs of the current session.
func (c *Commands) Tabs(ctx context.Context, action string, index *int) (string, error) {
	a, err := ParseTabAction(action)
	if err != nil {
		return "", err
	}
	s, err := c.registry.Current()
	if err != nil {
		return "", err
	}

	var res TabResult
	switch a {
	case TabNew:
		res, err = c.tabs.Open(s.Handle)
	case TabClose:
		res, err = c.tabs.Close(s.Handle, index)
	case TabSelect:
		res, err = c.tabs.Select(s.Handle, index)
	}
	if err != nil {
		return "", withSession(err, s.ID)
	}
	return res.String(), nil
}

// withSession records the session on a fault's details.
func withSession(err error, id string) error {
	if f, ok := err.(*Fault); ok {
		if f.Details == nil {
			f.Details = map[string]interface{}{}
		}
		f.Details["session_id"] = id
	}
	return err
}
