// Package driver defines the boundary between browserd and the software that
// actually controls a browser process.
//
// The core only ever talks to a browser through these interfaces. The
// pwdriver subpackage provides the production implementation and the
// drivertest subpackage provides controllable fakes for tests.
package driver

import (
	"context"
	"errors"
)

// Kind identifies a browser engine family.
type Kind string

const (
	// Chrome is a Chromium based browser
	Chrome Kind = "chrome"

	// Firefox is a Gecko based browser
	Firefox Kind = "firefox"

	// Safari is a WebKit based browser
	Safari Kind = "safari"
)

// WebDriver native location strategies.
const (
	UsingCSSSelector     = "css selector"
	UsingLinkText        = "link text"
	UsingPartialLinkText = "partial link text"
	UsingTagName         = "tag name"
	UsingXPath           = "xpath"
)

// By is a native element query.
type By struct {
	// Using is one of the Using* strategy names
	Using string

	// Value is interpreted according to Using
	Value string
}

// Key is a named keyboard key understood by a driver (e.g. "Enter", "ArrowUp").
type Key string

// ErrNoSuchWindow is returned when the focused window has been closed and no
// other window has been selected yet.
var ErrNoSuchWindow = errors.New("no such window: the focused window was closed")

// Launcher starts browser processes.
type Launcher interface {
	// Launch starts a browser of the given kind with the startup arguments
	// appended in order.
	Launch(ctx context.Context, kind Kind, args []string) (Handle, error)
}

// Handle is a live control connection to one running browser.
// A Handle is not safe for concurrent use.
type Handle interface {
	// Navigate loads url in the focused window.
	Navigate(url string) error

	// FindElement returns the first element matching by in the focused
	// window. It returns (nil, nil) when nothing matches.
	FindElement(by By) (Element, error)

	// WindowHandles lists the open windows in the driver's enumeration order.
	WindowHandles() ([]string, error)

	// CurrentWindow returns the focused window, or ErrNoSuchWindow.
	CurrentWindow() (string, error)

	// SwitchToWindow moves focus to the given window.
	SwitchToWindow(handle string) error

	// NewTab opens a tab and focuses it.
	NewTab() error

	// CloseWindow closes the focused window.
	CloseWindow() error

	// Screenshot captures the focused window as PNG bytes.
	Screenshot() ([]byte, error)

	// ExecuteScript runs a script body in the focused window. Script
	// arguments are reachable as arguments[0..n].
	ExecuteScript(script string, args ...interface{}) (interface{}, error)

	// PageSource returns the serialized DOM of the focused window.
	PageSource() (string, error)

	// DragAndDrop drags source onto target.
	DragAndDrop(source, target Element) error

	// Quit terminates the browser and releases all of its resources.
	Quit() error
}

// Element is a handle to one DOM element.
type Element interface {
	Click() error
	DoubleClick() error
	RightClick() error
	Hover() error
	Clear() error
	SendKeys(text string) error
	Press(key Key) error
	Text() (string, error)
	IsVisible() (bool, error)
	IsEnabled() (bool, error)

	// SetFiles attaches a local file to a file input element.
	SetFiles(path string) error
}
