package browser

import (
	"errors"
	"fmt"
)

// FaultKind identifies the class of a browser operation failure.
type FaultKind string

const (
	NoActiveSession                      FaultKind = "no_active_session"
	UnsupportedBrowserKind               FaultKind = "unsupported_browser_kind"
	LaunchFailure                        FaultKind = "launch_failure"
	InvalidLocatorStrategy               FaultKind = "invalid_locator_strategy"
	ElementNotFound                      FaultKind = "element_not_found"
	NotClickableWithinTimeout            FaultKind = "not_clickable_within_timeout"
	IndexOutOfRange                      FaultKind = "index_out_of_range"
	MissingLocatorForParameterizedScript FaultKind = "missing_locator_for_parameterized_script"
	EngineFailure                        FaultKind = "engine_failure"
	FilesystemFailure                    FaultKind = "filesystem_failure"
	UnsupportedKey                       FaultKind = "unsupported_key"
	MissingTabIndex                      FaultKind = "missing_tab_index"
	InvalidTabAction                     FaultKind = "invalid_tab_action"
	NavigationBlocked                    FaultKind = "navigation_blocked"
)

// Fault is the structured error returned by every browser operation.
type Fault struct {
	Kind    FaultKind
	Message string
	Details map[string]interface{}

	// Err is the underlying cause, if any
	Err error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Message, f.Err)
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// KindOf returns the kind of the first Fault in err's chain, or "" when err
// carries no Fault.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func newFault(kind FaultKind, details map[string]interface{}, format string, args ...interface{}) *Fault {
	return &Fault{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Details: details,
	}
}

// engineFault wraps a driver error. An existing Fault passes through untouched.
func engineFault(err error, details map[string]interface{}, format string, args ...interface{}) error {
	var f *Fault
	if errors.As(err, &f) {
		return err
	}
	return &Fault{
		Kind:    EngineFailure,
		Message: fmt.Sprintf(format, args...),
		Details: details,
		Err:     err,
	}
}

func errNoActiveSession() *Fault {
	return newFault(NoActiveSession, nil, "no active browser session, open a browser first")
}
