package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// TabAction is a tab management action.
type TabAction string

const (
	TabNew    TabAction = "NEW"
	TabClose  TabAction = "CLOSE"
	TabSelect TabAction = "SELECT"
)

// ParseTabAction parses an action name, ignoring case.
func ParseTabAction(s string) (TabAction, error) {
	switch a := TabAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case TabNew, TabClose, TabSelect:
		return a, nil
	}
	return "", newFault(InvalidTabAction, map[string]interface{}{"action": s},
		"invalid tab action %q (must be NEW, CLOSE or SELECT)", s)
}

// TabResult describes the tab set after an action.
type TabResult struct {
	Action TabAction

	// Index is the addressed ordinal, -1 when the action used none
	Index int

	// Closed is the handle of the closed window, if any
	Closed string

	// Focus is the focused window afterwards, empty when none
	Focus string

	// Remaining is the number of open windows afterwards
	Remaining int
}

// Tabs addresses the windows of a handle by ordinal index. Index i refers to
// position i in the order WindowHandles returns at the moment of the call.
type Tabs struct{}

// Open opens a tab and focuses it.
func (Tabs) Open(h driver.Handle) (TabResult, error) {
	if err := h.NewTab(); err != nil {
		return TabResult{}, engineFault(err, nil, "failed to open new tab")
	}
	return describe(h, TabResult{Action: TabNew, Index: -1})
}

// Close closes the focused tab when index is nil, otherwise the tab at index.
// Closing a background tab keeps focus where it was. Closing the focused tab
// by index moves focus to the first remaining tab.
func (Tabs) Close(h driver.Handle, index *int) (TabResult, error) {
	if index == nil {
		closed, _ := h.CurrentWindow()
		if err := h.CloseWindow(); err != nil {
			return TabResult{}, engineFault(err, nil, "failed to close current tab")
		}
		return describe(h, TabResult{Action: TabClose, Index: -1, Closed: closed})
	}

	handles, err := enumerate(h, *index)
	if err != nil {
		return TabResult{}, err
	}
	target := handles[*index]
	details := map[string]interface{}{"index": *index}

	focused, err := h.CurrentWindow()
	if err != nil && !errors.Is(err, driver.ErrNoSuchWindow) {
		return TabResult{}, engineFault(err, details, "failed to read focused tab")
	}

	if focused != "" && target != focused {
		if err := h.SwitchToWindow(target); err != nil {
			return TabResult{}, engineFault(err, details, "failed to switch to tab %d", *index)
		}
		if err := h.CloseWindow(); err != nil {
			return TabResult{}, engineFault(err, details, "failed to close tab %d", *index)
		}
		if err := h.SwitchToWindow(focused); err != nil {
			return TabResult{}, engineFault(err, details, "failed to restore focus after closing tab %d", *index)
		}
		return describe(h, TabResult{Action: TabClose, Index: *index, Closed: target})
	}

	if focused == "" {
		if err := h.SwitchToWindow(target); err != nil {
			return TabResult{}, engineFault(err, details, "failed to switch to tab %d", *index)
		}
	}
	if err := h.CloseWindow(); err != nil {
		return TabResult{}, engineFault(err, details, "failed to close tab %d", *index)
	}

	remaining, err := h.WindowHandles()
	if err != nil {
		return TabResult{}, engineFault(err, details, "failed to list tabs")
	}
	if len(remaining) > 0 {
		if err := h.SwitchToWindow(remaining[0]); err != nil {
			return TabResult{}, engineFault(err, details, "failed to focus tab 0 after closing tab %d", *index)
		}
	}
	return describe(h, TabResult{Action: TabClose, Index: *index, Closed: target})
}

// Select focuses the tab at index.
func (Tabs) Select(h driver.Handle, index *int) (TabResult, error) {
	if index == nil {
		return TabResult{}, newFault(MissingTabIndex, nil, "tab index is required for SELECT")
	}

	handles, err := enumerate(h, *index)
	if err != nil {
		return TabResult{}, err
	}
	if err := h.SwitchToWindow(handles[*index]); err != nil {
		return TabResult{}, engineFault(err, map[string]interface{}{"index": *index}, "failed to select tab %d", *index)
	}
	return describe(h, TabResult{Action: TabSelect, Index: *index})
}

// enumerate lists windows and checks index against them.
func enumerate(h driver.Handle, index int) ([]string, error) {
	handles, err := h.WindowHandles()
	if err != nil {
		return nil, engineFault(err, map[string]interface{}{"index": index}, "failed to list tabs")
	}
	if index < 0 || index >= len(handles) {
		return nil, newFault(IndexOutOfRange,
			map[string]interface{}{"index": index, "count": len(handles)},
			"tab index %d is out of range (%d tabs open)", index, len(handles))
	}
	return handles, nil
}

func describe(h driver.Handle, res TabResult) (TabResult, error) {
	handles, err := h.WindowHandles()
	if err != nil {
		return TabResult{}, engineFault(err, nil, "failed to list tabs")
	}
	res.Remaining = len(handles)

	focus, err := h.CurrentWindow()
	switch {
	case err == nil:
		res.Focus = focus
	case errors.Is(err, driver.ErrNoSuchWindow):
	default:
		return TabResult{}, engineFault(err, nil, "failed to read focused tab")
	}
	return res, nil
}

// String renders the result for callers.
func (r TabResult) String() string {
	var b strings.Builder
	switch r.Action {
	case TabNew:
		b.WriteString("Opened new tab.")
	case TabClose:
		if r.Index >= 0 {
			fmt.Fprintf(&b, "Closed tab at index %d.", r.Index)
		} else {
			b.WriteString("Closed current tab.")
		}
	case TabSelect:
		fmt.Fprintf(&b, "Selected tab at index %d.", r.Index)
	}

	switch {
	case r.Remaining == 0:
		b.WriteString(" No tabs remain open.")
	case r.Focus == "":
		fmt.Fprintf(&b, " %d tab(s) open, no tab has focus; select one before continuing.", r.Remaining)
	default:
		fmt.Fprintf(&b, " %d tab(s) open, focus is on window %s.", r.Remaining, r.Focus)
	}
	return b.String()
}
