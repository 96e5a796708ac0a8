package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/browserd/pkg/browser/driver"
	"github.com/entrhq/browserd/pkg/browser/driver/drivertest"
)

var (
	byButton = driver.By{Using: driver.UsingCSSSelector, Value: `[id="go"]`}
	byInput  = driver.By{Using: driver.UsingCSSSelector, Value: `[name="q"]`}
)

// newTestCommands returns commands over a fake launcher whose handles carry
// a #go button and a q input.
func newTestCommands(t *testing.T) (*Commands, *drivertest.Launcher) {
	t.Helper()
	launcher := &drivertest.Launcher{Setup: func(h *drivertest.Handle) {
		h.AddElement(byButton, drivertest.NewElement("Go"))
		h.AddElement(byInput, drivertest.NewElement(""))
	}}
	c := NewCommands(NewRegistry(launcher, nil), fastResolver())
	return c, launcher
}

func openSession(t *testing.T, c *Commands, launcher *drivertest.Launcher) *drivertest.Handle {
	t.Helper()
	out, err := c.Open(context.Background(), "chrome", Options{Headless: true})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Browser started successfully with session_id: chrome-"), out)
	handles := launcher.Handles()
	return handles[len(handles)-1]
}

func TestOpenThenOperateOnCurrentSession(t *testing.T) {
	for _, kind := range []string{"chrome", "firefox", "safari"} {
		t.Run(kind, func(t *testing.T) {
			c, launcher := newTestCommands(t)
			_, err := c.Open(context.Background(), kind, Options{})
			require.NoError(t, err)

			_, err = c.Navigate(context.Background(), "example.com")
			require.NoError(t, err)

			out, err := c.Click(context.Background(), "id", "go", intPtr(1))
			require.NoError(t, err)
			assert.Equal(t, "Element clicked successfully.", out)
			assert.Equal(t, "https://example.com", launcher.Handles()[0].URL)
		})
	}
}

func TestOperationsRequireSession(t *testing.T) {
	c, _ := newTestCommands(t)
	ctx := context.Background()

	ops := map[string]func() (string, error){
		"close":     func() (string, error) { return c.Close(ctx) },
		"navigate":  func() (string, error) { return c.Navigate(ctx, "example.com") },
		"click":     func() (string, error) { return c.Click(ctx, "id", "go", nil) },
		"text":      func() (string, error) { return c.GetText(ctx, "id", "go", nil) },
		"source":    func() (string, error) { return c.PageSource(ctx, false, 0) },
		"shot":      func() (string, error) { return c.Screenshot(ctx, filepath.Join(t.TempDir(), "x.png")) },
		"tabs":      func() (string, error) { return c.Tabs(ctx, "NEW", nil) },
		"script":    func() (string, error) { return c.ExecuteScript(ctx, "return 1", "", "") },
		"press key": func() (string, error) { return c.PressKey(ctx, "id", "go", "ENTER", nil) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			_, err := op()
			assert.Equal(t, NoActiveSession, KindOf(err))
		})
	}
}

func TestNavigateSchemeInsertion(t *testing.T) {
	c, launcher := newTestCommands(t)
	h := openSession(t, c, launcher)

	bare, err := c.Navigate(context.Background(), "example.com")
	require.NoError(t, err)
	bareTarget := h.URL

	full, err := c.Navigate(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, bareTarget, h.URL)
	assert.Equal(t, bare, full)
	assert.Equal(t, "Successfully navigated to https://example.com", full)

	_, err = c.Navigate(context.Background(), "http://localhost:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", h.URL)
}

func TestNavigateFailures(t *testing.T) {
	t.Run("blocked by policy", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)
		policy, err := NewNavigationPolicy(nil, []string{"https://blocked.test/**"})
		require.NoError(t, err)
		c.Policy = policy

		_, err = c.Navigate(context.Background(), "blocked.test/page")
		assert.Equal(t, NavigationBlocked, KindOf(err))
		assert.Empty(t, h.URL)
	})

	t.Run("engine error", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)
		h.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

		_, err := c.Navigate(context.Background(), "nowhere.invalid")
		assert.Equal(t, EngineFailure, KindOf(err))
		assert.Contains(t, err.Error(), "https://nowhere.invalid")
		assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
	})
}

func TestElementActions(t *testing.T) {
	c, launcher := newTestCommands(t)
	h := openSession(t, c, launcher)
	ctx := context.Background()

	button, err := h.FindElement(byButton)
	require.NoError(t, err)
	input, err := h.FindElement(byInput)
	require.NoError(t, err)

	out, err := c.SendKeys(ctx, "name", "q", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "Entered text into web element: hello", out)
	_, err = c.SendKeys(ctx, "name", "q", "world", nil)
	require.NoError(t, err)
	assert.Equal(t, "world", input.(*drivertest.Element).Value())

	text, err := c.GetText(ctx, "id", "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "Go", text)

	out, err = c.Hover(ctx, "id", "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "Moved mouse on the web element", out)

	out, err = c.DoubleClick(ctx, "id", "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "Double click performed successfully on the web element", out)

	out, err = c.RightClick(ctx, "id", "go", nil)
	require.NoError(t, err)
	assert.Equal(t, "Right click performed successfully on the web element", out)

	out, err = c.PressKey(ctx, "name", "q", "enter", nil)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard key 'ENTER' pressed successfully to the web element", out)
	assert.Equal(t, []driver.Key{"Enter"}, input.(*drivertest.Element).Pressed())

	out, err = c.UploadFile(ctx, "name", "q", "/tmp/report.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "File has been uploaded to the input web element", out)
	assert.Equal(t, []string{"/tmp/report.pdf"}, input.(*drivertest.Element).Files())

	out, err = c.DragAndDrop(ctx, "id", "go", "name", "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "Source element dragged to target element successfully", out)
	require.Len(t, h.Drags(), 1)
	assert.Same(t, button, h.Drags()[0][0])
	assert.Same(t, input, h.Drags()[0][1])

	assert.Equal(t, []string{"hover", "double_click", "right_click"}, button.(*drivertest.Element).Actions())
}

func TestElementActionFailures(t *testing.T) {
	c, launcher := newTestCommands(t)
	h := openSession(t, c, launcher)
	ctx := context.Background()

	_, err := c.Click(ctx, "cssSelector", ".nope", intPtr(1))
	assert.Equal(t, ElementNotFound, KindOf(err))
	assert.Contains(t, err.Error(), ".nope")

	_, err = c.Click(ctx, "byMagic", "x", nil)
	assert.Equal(t, InvalidLocatorStrategy, KindOf(err))

	_, err = c.PressKey(ctx, "id", "go", "HYPER", nil)
	assert.Equal(t, UnsupportedKey, KindOf(err))

	_, err = c.DragAndDrop(ctx, "id", "go", "id", "missing", intPtr(1))
	assert.Equal(t, ElementNotFound, KindOf(err))
	assert.Contains(t, err.Error(), "missing")

	disabled := drivertest.NewElement("").Disable()
	h.AddElement(driver.By{Using: driver.UsingCSSSelector, Value: `[id="off"]`}, disabled)
	_, err = c.Click(ctx, "id", "off", intPtr(1))
	assert.Equal(t, NotClickableWithinTimeout, KindOf(err))
	assert.Empty(t, disabled.Actions())

	broken := drivertest.NewElement("")
	broken.Err = errors.New("element detached")
	h.AddElement(driver.By{Using: driver.UsingXPath, Value: "//b"}, broken)
	_, err = c.Hover(ctx, "xpath", "//b", nil)
	assert.Equal(t, EngineFailure, KindOf(err))
	assert.Contains(t, err.Error(), "//b")
	assert.Contains(t, err.Error(), "element detached")
}

func TestScreenshot(t *testing.T) {
	t.Run("explicit path creates parents", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)
		path := filepath.Join(t.TempDir(), "nested", "dir", "shot.png")

		out, err := c.Screenshot(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "Screenshot captured successfully and saved to: "+path, out)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, h.Image, data)
	})

	t.Run("default path uses epoch millis", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		openSession(t, c, launcher)
		c.ScreenshotDir = filepath.Join(t.TempDir(), "screenshots")
		c.now = func() time.Time { return time.UnixMilli(1700000000123) }

		out, err := c.Screenshot(context.Background(), "  ")
		require.NoError(t, err)

		want := filepath.Join(c.ScreenshotDir, "1700000000123.png")
		assert.True(t, strings.HasSuffix(out, want), out)
		assert.FileExists(t, want)
	})

	t.Run("write failure", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		openSession(t, c, launcher)
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		_, err := c.Screenshot(context.Background(), filepath.Join(blocker, "shot.png"))
		assert.Equal(t, FilesystemFailure, KindOf(err))
		assert.Contains(t, err.Error(), blocker)
	})
}

func TestExecuteScript(t *testing.T) {
	t.Run("parameterized script without locator never reaches the engine", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)
		before := h.Calls()

		for _, loc := range [][2]string{{"", ""}, {"id", ""}, {"", "go"}} {
			_, err := c.ExecuteScript(context.Background(), "arguments[0].click()", loc[0], loc[1])
			assert.Equal(t, MissingLocatorForParameterizedScript, KindOf(err))
		}
		assert.Equal(t, before, h.Calls())
		assert.Empty(t, h.Scripts())
	})

	t.Run("parameterized script receives element", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)

		out, err := c.ExecuteScript(context.Background(), "arguments[0].scrollIntoView()", "id", "go")
		require.NoError(t, err)
		assert.Equal(t, "Javascript executed successfully", out)

		scripts := h.Scripts()
		require.Len(t, scripts, 1)
		require.Len(t, scripts[0].Args, 1)
		button, _ := h.FindElement(byButton)
		assert.Same(t, button, scripts[0].Args[0])
	})

	t.Run("plain script ignores locator", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		h := openSession(t, c, launcher)
		h.ScriptResult = float64(42)

		out, err := c.ExecuteScript(context.Background(), "return 6 * 7", "id", "absent")
		require.NoError(t, err)
		assert.Equal(t, "Javascript executed successfully\nResult: 42", out)
		assert.Empty(t, h.Scripts()[0].Args)
	})

	t.Run("element wait is short", func(t *testing.T) {
		c, launcher := newTestCommands(t)
		openSession(t, c, launcher)
		c.ScriptElementTimeout = 50 * time.Millisecond

		_, err := c.ExecuteScript(context.Background(), "arguments[0].click()", "id", "absent")
		assert.Equal(t, ElementNotFound, KindOf(err))
	})
}

func TestPageSource(t *testing.T) {
	c, launcher := newTestCommands(t)
	h := openSession(t, c, launcher)
	h.Source = `<html><head><script>track()</script></head><body><p id="x">Hi</p></body></html>`

	raw, err := c.PageSource(context.Background(), false, 0)
	require.NoError(t, err)
	assert.Equal(t, h.Source, raw)

	cleaned, err := c.PageSource(context.Background(), true, 0)
	require.NoError(t, err)
	assert.NotContains(t, cleaned, "track()")
	assert.Contains(t, cleaned, `<p id="x">Hi</p>`)
}

func TestTabsCommand(t *testing.T) {
	c, launcher := newTestCommands(t)
	h := openSession(t, c, launcher)
	ctx := context.Background()

	out, err := c.Tabs(ctx, "new", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Opened new tab.")
	assert.Len(t, h.Windows(), 2)

	_, err = c.Tabs(ctx, "SELECT", intPtr(5))
	assert.Equal(t, IndexOutOfRange, KindOf(err))
	var f *Fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, 5, f.Details["index"])
	assert.NotEmpty(t, f.Details["session_id"])

	_, err = c.Tabs(ctx, "SELECT", nil)
	assert.Equal(t, MissingTabIndex, KindOf(err))

	_, err = c.Tabs(ctx, "reload", nil)
	assert.Equal(t, InvalidTabAction, KindOf(err))

	out, err = c.Tabs(ctx, "close", intPtr(1))
	require.NoError(t, err)
	assert.Contains(t, out, "Closed tab at index 1.")
	assert.Equal(t, []string{"window-1"}, h.Windows())
	assert.Equal(t, "window-1", h.Focus())
}

func TestCloseAndListSessions(t *testing.T) {
	c, launcher := newTestCommands(t)
	ctx := context.Background()

	assert.Equal(t, "No browser sessions are open.", c.ListSessions())

	openSession(t, c, launcher)
	_, err := c.Open(ctx, "firefox", Options{})
	require.NoError(t, err)

	list := c.ListSessions()
	assert.Contains(t, list, "2 browser session(s) open:")
	assert.Contains(t, list, "(chrome, headless,")
	assert.Contains(t, list, "* firefox-")

	current, err := c.Registry().Current()
	require.NoError(t, err)

	out, err := c.Close(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Browser session closed successfully with id: "+current.ID, out)

	_, err = c.Close(ctx)
	assert.Equal(t, NoActiveSession, KindOf(err))
}
