package browser

import (
	"context"

	core "github.com/entrhq/browserd/pkg/browser"
)

// NavigateInput holds the browser_navigate arguments.
type NavigateInput struct {
	URL string `json:"url" jsonschema:"address to load; https:// is assumed when no scheme is given"`
}

// NavigateTool loads a URL in the current session.
type NavigateTool struct {
	commands *core.Commands
}

// NewNavigateTool creates a new navigate tool.
func NewNavigateTool(commands *core.Commands) *NavigateTool {
	return &NavigateTool{commands: commands}
}

// Name returns the tool name.
func (t *NavigateTool) Name() string {
	return "browser_navigate"
}

// Description returns the tool description.
func (t *NavigateTool) Description() string {
	return "Navigate the focused tab of the current browser session to a URL. A URL without a scheme is loaded over https."
}

// Execute navigates to the URL.
func (t *NavigateTool) Execute(ctx context.Context, in NavigateInput) Result {
	out, err := t.commands.Navigate(ctx, in.URL)
	if err != nil {
		return failure(err, "Error while navigating to url %s", in.URL)
	}
	return success(out)
}
