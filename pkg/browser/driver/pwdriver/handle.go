package pwdriver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// scriptWrapper turns a WebDriver style script body into a function that
// sees its parameters as arguments[0..n].
const scriptWrapper = "(args) => (function() {\n%s\n}).apply(null, args)"

// handle is a driver.Handle backed by one Playwright browser and context.
type handle struct {
	mu      sync.Mutex
	browser playwright.Browser
	context playwright.BrowserContext
	current playwright.Page
	ids     map[playwright.Page]string
}

func newHandle(browser playwright.Browser, browserContext playwright.BrowserContext, page playwright.Page) *handle {
	h := &handle{
		browser: browser,
		context: browserContext,
		current: page,
		ids:     make(map[playwright.Page]string),
	}
	h.idFor(page)
	return h
}

// idFor returns the stable window handle of a page, assigning one on first
// sight. Callers hold h.mu.
func (h *handle) idFor(page playwright.Page) string {
	if id, ok := h.ids[page]; ok {
		return id
	}
	id := uuid.NewString()
	h.ids[page] = id
	return id
}

// focused returns the focused page or driver.ErrNoSuchWindow.
func (h *handle) focused() (playwright.Page, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil || h.current.IsClosed() {
		return nil, driver.ErrNoSuchWindow
	}
	return h.current, nil
}

func (h *handle) Navigate(url string) error {
	page, err := h.focused()
	if err != nil {
		return err
	}
	if _, err := page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (h *handle) FindElement(by driver.By) (driver.Element, error) {
	page, err := h.focused()
	if err != nil {
		return nil, err
	}

	sel, err := selector(by)
	if err != nil {
		return nil, err
	}

	found, err := page.QuerySelector(sel)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	if found == nil {
		return nil, nil
	}
	return &element{handle: found, page: page}, nil
}

func (h *handle) WindowHandles() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pages := h.context.Pages()
	open := make(map[playwright.Page]bool, len(pages))
	handles := make([]string, 0, len(pages))
	for _, page := range pages {
		if page.IsClosed() {
			continue
		}
		open[page] = true
		handles = append(handles, h.idFor(page))
	}

	for page := range h.ids {
		if !open[page] {
			delete(h.ids, page)
		}
	}
	return handles, nil
}

func (h *handle) CurrentWindow() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == nil || h.current.IsClosed() {
		return "", driver.ErrNoSuchWindow
	}
	return h.idFor(h.current), nil
}

func (h *handle) SwitchToWindow(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, page := range h.context.Pages() {
		if page.IsClosed() || h.ids[page] != id {
			continue
		}
		if err := page.BringToFront(); err != nil {
			return fmt.Errorf("failed to focus window %s: %w", id, err)
		}
		h.current = page
		return nil
	}
	return fmt.Errorf("no such window: %s", id)
}

func (h *handle) NewTab() error {
	page, err := h.context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open tab: %w", err)
	}
	if err := page.BringToFront(); err != nil {
		return fmt.Errorf("failed to focus new tab: %w", err)
	}

	h.mu.Lock()
	h.idFor(page)
	h.current = page
	h.mu.Unlock()
	return nil
}

func (h *handle) CloseWindow() error {
	page, err := h.focused()
	if err != nil {
		return err
	}
	if err := page.Close(); err != nil {
		return fmt.Errorf("failed to close window: %w", err)
	}

	h.mu.Lock()
	delete(h.ids, page)
	if h.current == page {
		h.current = nil
	}
	h.mu.Unlock()
	return nil
}

func (h *handle) Screenshot() ([]byte, error) {
	page, err := h.focused()
	if err != nil {
		return nil, err
	}
	data, err := page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (h *handle) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	page, err := h.focused()
	if err != nil {
		return nil, err
	}

	jsArgs := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if el, ok := arg.(*element); ok {
			jsArgs = append(jsArgs, el.handle)
			continue
		}
		jsArgs = append(jsArgs, arg)
	}

	result, err := page.Evaluate(fmt.Sprintf(scriptWrapper, script), jsArgs)
	if err != nil {
		return nil, fmt.Errorf("script evaluation failed: %w", err)
	}
	return result, nil
}

func (h *handle) PageSource() (string, error) {
	page, err := h.focused()
	if err != nil {
		return "", err
	}
	return page.Content()
}

func (h *handle) DragAndDrop(source, target driver.Element) error {
	src, ok := source.(*element)
	if !ok {
		return fmt.Errorf("drag source %T does not belong to this driver", source)
	}
	dst, ok := target.(*element)
	if !ok {
		return fmt.Errorf("drop target %T does not belong to this driver", target)
	}

	mouse := src.page.Mouse()
	if err := src.handle.Hover(); err != nil {
		return fmt.Errorf("failed to move to drag source: %w", err)
	}
	if err := mouse.Down(); err != nil {
		return fmt.Errorf("failed to press mouse: %w", err)
	}
	if err := dst.handle.Hover(); err != nil {
		return fmt.Errorf("failed to move to drop target: %w", err)
	}
	if err := mouse.Up(); err != nil {
		return fmt.Errorf("failed to release mouse: %w", err)
	}
	return nil
}

func (h *handle) Quit() error {
	var errs []error
	if err := h.context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close context: %w", err))
	}
	if err := h.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}

	h.mu.Lock()
	h.current = nil
	h.ids = make(map[playwright.Page]string)
	h.mu.Unlock()

	return errors.Join(errs...)
}

// selector translates a WebDriver query into a Playwright selector.
func selector(by driver.By) (string, error) {
	switch by.Using {
	case driver.UsingCSSSelector, driver.UsingTagName:
		return "css=" + by.Value, nil
	case driver.UsingXPath:
		return "xpath=" + by.Value, nil
	case driver.UsingLinkText:
		return "css=a:text-is(" + cssString(by.Value) + ")", nil
	case driver.UsingPartialLinkText:
		return "css=a:has-text(" + cssString(by.Value) + ")", nil
	default:
		return "", fmt.Errorf("unsupported query strategy %q", by.Using)
	}
}

func cssString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
