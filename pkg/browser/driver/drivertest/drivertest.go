// Package drivertest provides in-memory fakes of the driver interfaces.
//
// The fakes keep enough state to exercise session, locator and tab logic:
// windows are plain string handles, elements are registered per query and
// can become visible or enabled after a delay.
package drivertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// LaunchCall records one Launch invocation.
type LaunchCall struct {
	Kind driver.Kind
	Args []string
}

// Launcher is a fake driver.Launcher.
type Launcher struct {
	mu       sync.Mutex
	launches []LaunchCall
	handles  []*Handle

	// Err is returned by every Launch when set
	Err error

	// Delay is slept before each launch returns
	Delay time.Duration

	// Setup, when set, is applied to each new handle before it is returned
	Setup func(h *Handle)
}

// Launch returns a fresh Handle.
func (l *Launcher) Launch(ctx context.Context, kind driver.Kind, args []string) (driver.Handle, error) {
	if l.Delay > 0 {
		time.Sleep(l.Delay)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.launches = append(l.launches, LaunchCall{Kind: kind, Args: append([]string(nil), args...)})
	if l.Err != nil {
		return nil, l.Err
	}

	h := NewHandle()
	if l.Setup != nil {
		l.Setup(h)
	}
	l.handles = append(l.handles, h)
	return h, nil
}

// Launches returns the recorded Launch calls.
func (l *Launcher) Launches() []LaunchCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LaunchCall(nil), l.launches...)
}

// Handles returns every handle created so far.
func (l *Launcher) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Handle(nil), l.handles...)
}

// ScriptCall records one ExecuteScript invocation.
type ScriptCall struct {
	Script string
	Args   []interface{}
}

// Handle is a fake driver.Handle.
type Handle struct {
	mu       sync.Mutex
	windows  []string
	current  string
	nextID   int
	elements map[driver.By]*Element
	calls    []string
	scripts  []ScriptCall
	drags    [][2]*Element
	quit     bool

	// URL is the last navigated address
	URL string

	// Source is returned by PageSource
	Source string

	// Image is returned by Screenshot
	Image []byte

	// ScriptResult is returned by ExecuteScript
	ScriptResult interface{}

	// Error injection
	NavigateErr   error
	FindErr       error
	ScreenshotErr error
	ScriptErr     error
	QuitErr       error
}

// NewHandle returns a handle with one open, focused window.
func NewHandle() *Handle {
	h := &Handle{
		elements: make(map[driver.By]*Element),
		Image:    []byte("\x89PNG fake"),
	}
	h.current = h.addWindow()
	return h
}

func (h *Handle) addWindow() string {
	h.nextID++
	id := fmt.Sprintf("window-%d", h.nextID)
	h.windows = append(h.windows, id)
	return id
}

func (h *Handle) record(call string) {
	h.calls = append(h.calls, call)
}

// AddElement registers the element returned for by.
func (h *Handle) AddElement(by driver.By, el *Element) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.elements[by] = el
}

// OpenWindows appends n background windows without changing focus.
func (h *Handle) OpenWindows(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < n; i++ {
		h.addWindow()
	}
}

// Calls lists the driver methods invoked so far, in order.
func (h *Handle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// Scripts lists recorded ExecuteScript calls.
func (h *Handle) Scripts() []ScriptCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ScriptCall(nil), h.scripts...)
}

// Drags lists recorded drag and drop pairs.
func (h *Handle) Drags() [][2]*Element {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([][2]*Element(nil), h.drags...)
}

// Focus returns the focused window, empty when none.
func (h *Handle) Focus() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Windows returns the open windows in enumeration order.
func (h *Handle) Windows() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.windows...)
}

// Quitted reports whether Quit was called.
func (h *Handle) Quitted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quit
}

func (h *Handle) Navigate(url string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("Navigate")
	if h.NavigateErr != nil {
		return h.NavigateErr
	}
	h.URL = url
	return nil
}

func (h *Handle) FindElement(by driver.By) (driver.Element, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("FindElement")
	if h.FindErr != nil {
		return nil, h.FindErr
	}
	el, ok := h.elements[by]
	if !ok {
		return nil, nil
	}
	return el, nil
}

func (h *Handle) WindowHandles() ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("WindowHandles")
	return append([]string(nil), h.windows...), nil
}

func (h *Handle) CurrentWindow() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("CurrentWindow")
	if h.current == "" {
		return "", driver.ErrNoSuchWindow
	}
	return h.current, nil
}

func (h *Handle) SwitchToWindow(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("SwitchToWindow")
	for _, w := range h.windows {
		if w == id {
			h.current = id
			return nil
		}
	}
	return fmt.Errorf("no such window: %s", id)
}

func (h *Handle) NewTab() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("NewTab")
	h.current = h.addWindow()
	return nil
}

func (h *Handle) CloseWindow() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("CloseWindow")
	if h.current == "" {
		return driver.ErrNoSuchWindow
	}
	for i, w := range h.windows {
		if w == h.current {
			h.windows = append(h.windows[:i], h.windows[i+1:]...)
			break
		}
	}
	h.current = ""
	return nil
}

func (h *Handle) Screenshot() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("Screenshot")
	if h.ScreenshotErr != nil {
		return nil, h.ScreenshotErr
	}
	return h.Image, nil
}

func (h *Handle) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("ExecuteScript")
	h.scripts = append(h.scripts, ScriptCall{Script: script, Args: args})
	if h.ScriptErr != nil {
		return nil, h.ScriptErr
	}
	return h.ScriptResult, nil
}

func (h *Handle) PageSource() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("PageSource")
	return h.Source, nil
}

func (h *Handle) DragAndDrop(source, target driver.Element) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("DragAndDrop")
	src, ok := source.(*Element)
	if !ok {
		return errors.New("foreign drag source")
	}
	dst, ok := target.(*Element)
	if !ok {
		return errors.New("foreign drop target")
	}
	h.drags = append(h.drags, [2]*Element{src, dst})
	return nil
}

func (h *Handle) Quit() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("Quit")
	h.quit = true
	return h.QuitErr
}

// Element is a fake driver.Element.
type Element struct {
	mu       sync.Mutex
	text     string
	value    string
	hidden   bool
	disabled bool
	showAt   time.Time
	enableAt time.Time
	actions  []string
	pressed  []driver.Key
	files    []string

	// Err is returned by every action when set
	Err error
}

// NewElement returns a visible, enabled element with the given text.
func NewElement(text string) *Element {
	return &Element{text: text}
}

// ShowAfter makes the element invisible until d has elapsed.
func (e *Element) ShowAfter(d time.Duration) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.showAt = time.Now().Add(d)
	return e
}

// EnableAfter makes the element disabled until d has elapsed.
func (e *Element) EnableAfter(d time.Duration) *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enableAt = time.Now().Add(d)
	return e
}

// Hide makes the element permanently invisible.
func (e *Element) Hide() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hidden = true
	return e
}

// Disable makes the element permanently disabled.
func (e *Element) Disable() *Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disabled = true
	return e
}

// Actions lists the actions performed on the element, in order.
func (e *Element) Actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.actions...)
}

// Value returns the text typed into the element since the last Clear.
func (e *Element) Value() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value
}

// Pressed lists the keys pressed on the element.
func (e *Element) Pressed() []driver.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]driver.Key(nil), e.pressed...)
}

// Files lists the files attached to the element.
func (e *Element) Files() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.files...)
}

func (e *Element) act(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.actions = append(e.actions, name)
	return nil
}

func (e *Element) Click() error       { return e.act("click") }
func (e *Element) DoubleClick() error { return e.act("double_click") }
func (e *Element) RightClick() error  { return e.act("right_click") }
func (e *Element) Hover() error       { return e.act("hover") }

func (e *Element) Clear() error {
	if err := e.act("clear"); err != nil {
		return err
	}
	e.mu.Lock()
	e.value = ""
	e.mu.Unlock()
	return nil
}

func (e *Element) SendKeys(text string) error {
	if err := e.act("send_keys"); err != nil {
		return err
	}
	e.mu.Lock()
	e.value += text
	e.mu.Unlock()
	return nil
}

func (e *Element) Press(key driver.Key) error {
	if err := e.act("press"); err != nil {
		return err
	}
	e.mu.Lock()
	e.pressed = append(e.pressed, key)
	e.mu.Unlock()
	return nil
}

func (e *Element) SetFiles(path string) error {
	if err := e.act("set_files"); err != nil {
		return err
	}
	e.mu.Lock()
	e.files = append(e.files, path)
	e.mu.Unlock()
	return nil
}

func (e *Element) Text() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text, nil
}

func (e *Element) IsVisible() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.hidden && !time.Now().Before(e.showAt), nil
}

func (e *Element) IsEnabled() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.disabled && !time.Now().Before(e.enableAt), nil
}
