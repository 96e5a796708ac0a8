package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	core "github.com/entrhq/browserd/pkg/browser"
	"github.com/entrhq/browserd/pkg/metrics"
)

// OpenInput holds the browser_open arguments.
type OpenInput struct {
	BrowserName string       `json:"browserName" jsonschema:"browser to launch: chrome, firefox or safari"`
	Options     *OpenOptions `json:"options,omitempty" jsonschema:"launch options"`
}

// OpenOptions mirrors core.Options on the wire. Unknown fields are ignored.
type OpenOptions struct {
	Headless  bool     `json:"headless,omitempty" jsonschema:"run without a visible window"`
	Arguments []string `json:"arguments,omitempty" jsonschema:"extra command line arguments passed to the browser, in order"`
}

// UnmarshalJSON decodes the known fields and drops the rest, whatever
// decoder settings the caller uses.
func (o *OpenOptions) UnmarshalJSON(data []byte) error {
	type plain OpenOptions
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = OpenOptions(p)
	return nil
}

func (o *OpenOptions) toCore() core.Options {
	if o == nil {
		return core.Options{}
	}
	return core.Options{Headless: o.Headless, Arguments: o.Arguments}
}

// OpenTool launches a browser and makes it the current session.
type OpenTool struct {
	commands *core.Commands
	metrics  *metrics.Metrics
}

// NewOpenTool creates a new open tool.
func NewOpenTool(commands *core.Commands, m *metrics.Metrics) *OpenTool {
	return &OpenTool{commands: commands, metrics: m}
}

// Name returns the tool name.
func (t *OpenTool) Name() string {
	return "browser_open"
}

// Description returns the tool description.
func (t *OpenTool) Description() string {
	return "Open a new browser session (chrome, firefox or safari). The new session becomes the current one and every other browser tool acts on it until it is closed or another browser is opened."
}

// Schema infers the input schema, leaving options open to unknown fields.
func (t *OpenTool) Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[OpenInput](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer browser_open schema: %w", err)
	}
	if opts, ok := s.Properties["options"]; ok {
		opts.AdditionalProperties = nil
	}
	return s, nil
}

// Execute opens the browser.
func (t *OpenTool) Execute(ctx context.Context, in OpenInput) Result {
	out, err := t.commands.Open(ctx, in.BrowserName, in.Options.toCore())
	failed := err != nil && core.KindOf(err) == core.LaunchFailure
	if err == nil || failed {
		t.metrics.RecordLaunch(strings.ToLower(strings.TrimSpace(in.BrowserName)), failed)
	}
	if err != nil {
		return failure(err, "Error in starting browser")
	}
	return success(out)
}

// CloseInput holds the browser_close arguments.
type CloseInput struct{}

// CloseTool quits the current session.
type CloseTool struct {
	commands *core.Commands
}

// NewCloseTool creates a new close tool.
func NewCloseTool(commands *core.Commands) *CloseTool {
	return &CloseTool{commands: commands}
}

// Name returns the tool name.
func (t *CloseTool) Name() string {
	return "browser_close"
}

// Description returns the tool description.
func (t *CloseTool) Description() string {
	return "Close the current browser session. Other open sessions stay open but none becomes current; open a browser again before using other tools."
}

// Execute closes the current session.
func (t *CloseTool) Execute(ctx context.Context, _ CloseInput) Result {
	out, err := t.commands.Close(ctx)
	if err != nil {
		return failure(err, "Error in closing browser session")
	}
	return success(out)
}

// ListSessionsInput holds the browser_list_sessions arguments.
type ListSessionsInput struct{}

// ListSessionsTool lists open sessions.
type ListSessionsTool struct {
	commands *core.Commands
}

// NewListSessionsTool creates a new list sessions tool.
func NewListSessionsTool(commands *core.Commands) *ListSessionsTool {
	return &ListSessionsTool{commands: commands}
}

// Name returns the tool name.
func (t *ListSessionsTool) Name() string {
	return "browser_list_sessions"
}

// Description returns the tool description.
func (t *ListSessionsTool) Description() string {
	return "List all open browser sessions with their browser, mode and start time. The current session is marked with '*'."
}

// Execute lists the sessions.
func (t *ListSessionsTool) Execute(_ context.Context, _ ListSessionsInput) Result {
	return success(t.commands.ListSessions())
}
