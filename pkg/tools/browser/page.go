package browser

import (
	"context"

	core "github.com/entrhq/browserd/pkg/browser"
)

// ScreenshotInput holds the browser_take_screenshot arguments.
type ScreenshotInput struct {
	OutputPath string `json:"outputPath,omitempty" jsonschema:"file to write the PNG to; defaults to a timestamped file under ~/.mcp/screenshots"`
}

// ScreenshotTool captures the focused tab as PNG.
type ScreenshotTool struct {
	commands *core.Commands
}

// NewScreenshotTool creates a new screenshot tool.
func NewScreenshotTool(commands *core.Commands) *ScreenshotTool {
	return &ScreenshotTool{commands: commands}
}

// Name returns the tool name.
func (t *ScreenshotTool) Name() string {
	return "browser_take_screenshot"
}

// Description returns the tool description.
func (t *ScreenshotTool) Description() string {
	return "Capture a PNG screenshot of the focused tab and save it to disk. Returns the path of the written file."
}

// Execute takes the screenshot.
func (t *ScreenshotTool) Execute(ctx context.Context, in ScreenshotInput) Result {
	out, err := t.commands.Screenshot(ctx, in.OutputPath)
	if err != nil {
		return failure(err, "Error in capturing screenshot")
	}
	return success(out)
}

// PageSourceInput holds the browser_page_source arguments.
type PageSourceInput struct {
	Clean     bool `json:"clean,omitempty" jsonschema:"strip scripts, styles and presentational attributes before returning"`
	MaxLength int  `json:"maxLength,omitempty" jsonschema:"truncate the returned source to this many characters, 0 for no limit"`
}

// PageSourceTool returns the focused tab's HTML.
type PageSourceTool struct {
	commands *core.Commands
}

// NewPageSourceTool creates a new page source tool.
func NewPageSourceTool(commands *core.Commands) *PageSourceTool {
	return &PageSourceTool{commands: commands}
}

// Name returns the tool name.
func (t *PageSourceTool) Name() string {
	return "browser_page_source"
}

// Description returns the tool description.
func (t *PageSourceTool) Description() string {
	return "Return the HTML source of the focused tab. Set clean to get a compact structural view that keeps ids, names, roles and form attributes useful for building locators."
}

// Execute fetches the source.
func (t *PageSourceTool) Execute(ctx context.Context, in PageSourceInput) Result {
	out, err := t.commands.PageSource(ctx, in.Clean, in.MaxLength)
	if err != nil {
		return failure(err, "Error in fetching page source code")
	}
	return success(out)
}

// ExecuteScriptInput holds the browser_execute_javascript arguments.
type ExecuteScriptInput struct {
	Script       string `json:"script" jsonschema:"JavaScript to run in the focused tab; use arguments[0] to refer to the located element"`
	FindBy       string `json:"findBy,omitempty" jsonschema:"locator strategy of the element passed as arguments[0]"`
	LocatorValue string `json:"locatorValue,omitempty" jsonschema:"locator value of the element passed as arguments[0]"`
}

// ExecuteScriptTool runs JavaScript in the focused tab.
type ExecuteScriptTool struct {
	commands *core.Commands
}

// NewExecuteScriptTool creates a new execute script tool.
func NewExecuteScriptTool(commands *core.Commands) *ExecuteScriptTool {
	return &ExecuteScriptTool{commands: commands}
}

// Name returns the tool name.
func (t *ExecuteScriptTool) Name() string {
	return "browser_execute_javascript"
}

// Description returns the tool description.
func (t *ExecuteScriptTool) Description() string {
	return "Execute JavaScript in the focused tab. A script referring to arguments[0] receives the element addressed by findBy and locatorValue, which are then required. The script's return value is included in the result."
}

// Execute runs the script.
func (t *ExecuteScriptTool) Execute(ctx context.Context, in ExecuteScriptInput) Result {
	out, err := t.commands.ExecuteScript(ctx, in.Script, in.FindBy, in.LocatorValue)
	if err != nil {
		return failure(err, "Error in executing javascript")
	}
	return success(out)
}

// TabsInput holds the browser_tabs arguments.
type TabsInput struct {
	Action string `json:"action" jsonschema:"NEW opens and focuses a tab, CLOSE closes the tab at index (or the focused one), SELECT focuses the tab at index"`
	Index  *int   `json:"index,omitempty" jsonschema:"zero based tab position; required for SELECT"`
}

// TabsTool manages tabs of the current session.
type TabsTool struct {
	commands *core.Commands
}

// NewTabsTool creates a new tabs tool.
func NewTabsTool(commands *core.Commands) *TabsTool {
	return &TabsTool{commands: commands}
}

// Name returns the tool name.
func (t *TabsTool) Name() string {
	return "browser_tabs"
}

// Description returns the tool description.
func (t *TabsTool) Description() string {
	return "Open, close or select tabs of the current browser session. Tabs are addressed by their position in the browser's window list, starting at 0."
}

// Execute performs the tab action.
func (t *TabsTool) Execute(ctx context.Context, in TabsInput) Result {
	out, err := t.commands.Tabs(ctx, in.Action, in.Index)
	if err != nil {
		return failure(err, "Error in performing tab action %s", in.Action)
	}
	return success(out)
}
