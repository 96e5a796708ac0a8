package browser

import (
	"context"

	core "github.com/entrhq/browserd/pkg/browser"
)

const locatorHelp = "locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"

// ClickInput holds the browser_click arguments.
type ClickInput struct {
	FindBy  string `json:"findBy" jsonschema:"locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"`
	Value   string `json:"value" jsonschema:"value matched by the locator strategy"`
	Timeout *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for the element to become clickable, 20 when absent or not positive"`
}

// ClickTool clicks an element once it is clickable.
type ClickTool struct {
	commands *core.Commands
}

// NewClickTool creates a new click tool.
func NewClickTool(commands *core.Commands) *ClickTool {
	return &ClickTool{commands: commands}
}

// Name returns the tool name.
func (t *ClickTool) Name() string {
	return "browser_click"
}

// Description returns the tool description.
func (t *ClickTool) Description() string {
	return "Click an element in the current browser session, waiting until it is visible and enabled. Elements are found by " + locatorHelp + "."
}

// Execute clicks the element.
func (t *ClickTool) Execute(ctx context.Context, in ClickInput) Result {
	out, err := t.commands.Click(ctx, in.FindBy, in.Value, in.Timeout)
	if err != nil {
		return failure(err, "Error in clicking Web Element [%s, %s]", in.FindBy, in.Value)
	}
	return success(out)
}

// ElementInput addresses one element.
type ElementInput struct {
	FindBy       string `json:"findBy" jsonschema:"locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"`
	LocatorValue string `json:"locatorValue" jsonschema:"value matched by the locator strategy"`
	Timeout      *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for the element to become visible, 20 when absent or not positive"`
}

// SendKeysInput holds the browser_send_keys arguments.
type SendKeysInput struct {
	FindBy       string `json:"findBy" jsonschema:"locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"`
	LocatorValue string `json:"locatorValue" jsonschema:"value matched by the locator strategy"`
	Text         string `json:"text" jsonschema:"text to type; the field is cleared first"`
	Timeout      *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for the element to become visible, 20 when absent or not positive"`
}

// SendKeysTool replaces the content of an input element.
type SendKeysTool struct {
	commands *core.Commands
}

// NewSendKeysTool creates a new send keys tool.
func NewSendKeysTool(commands *core.Commands) *SendKeysTool {
	return &SendKeysTool{commands: commands}
}

// Name returns the tool name.
func (t *SendKeysTool) Name() string {
	return "browser_send_keys"
}

// Description returns the tool description.
func (t *SendKeysTool) Description() string {
	return "Clear an input element and type text into it."
}

// Execute types the text.
func (t *SendKeysTool) Execute(ctx context.Context, in SendKeysInput) Result {
	out, err := t.commands.SendKeys(ctx, in.FindBy, in.LocatorValue, in.Text, in.Timeout)
	if err != nil {
		return failure(err, "Error in entering text to Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// GetTextTool reads the visible text of an element.
type GetTextTool struct {
	commands *core.Commands
}

// NewGetTextTool creates a new get text tool.
func NewGetTextTool(commands *core.Commands) *GetTextTool {
	return &GetTextTool{commands: commands}
}

// Name returns the tool name.
func (t *GetTextTool) Name() string {
	return "browser_get_text"
}

// Description returns the tool description.
func (t *GetTextTool) Description() string {
	return "Return the visible text of an element in the current browser session."
}

// Execute reads the text.
func (t *GetTextTool) Execute(ctx context.Context, in ElementInput) Result {
	out, err := t.commands.GetText(ctx, in.FindBy, in.LocatorValue, in.Timeout)
	if err != nil {
		return failure(err, "Error in getting text of Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// HoverTool moves the mouse over an element.
type HoverTool struct {
	commands *core.Commands
}

// NewHoverTool creates a new hover tool.
func NewHoverTool(commands *core.Commands) *HoverTool {
	return &HoverTool{commands: commands}
}

// Name returns the tool name.
func (t *HoverTool) Name() string {
	return "browser_hover"
}

// Description returns the tool description.
func (t *HoverTool) Description() string {
	return "Move the mouse over an element, for example to open a hover menu."
}

// Execute hovers the element.
func (t *HoverTool) Execute(ctx context.Context, in ElementInput) Result {
	out, err := t.commands.Hover(ctx, in.FindBy, in.LocatorValue, in.Timeout)
	if err != nil {
		return failure(err, "Error in hovering on a Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// DoubleClickTool double clicks an element.
type DoubleClickTool struct {
	commands *core.Commands
}

// NewDoubleClickTool creates a new double click tool.
func NewDoubleClickTool(commands *core.Commands) *DoubleClickTool {
	return &DoubleClickTool{commands: commands}
}

// Name returns the tool name.
func (t *DoubleClickTool) Name() string {
	return "browser_double_click"
}

// Description returns the tool description.
func (t *DoubleClickTool) Description() string {
	return "Double click an element in the current browser session."
}

// Execute double clicks the element.
func (t *DoubleClickTool) Execute(ctx context.Context, in ElementInput) Result {
	out, err := t.commands.DoubleClick(ctx, in.FindBy, in.LocatorValue, in.Timeout)
	if err != nil {
		return failure(err, "Error in performing double click on the Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// RightClickTool opens the context menu of an element.
type RightClickTool struct {
	commands *core.Commands
}

// NewRightClickTool creates a new right click tool.
func NewRightClickTool(commands *core.Commands) *RightClickTool {
	return &RightClickTool{commands: commands}
}

// Name returns the tool name.
func (t *RightClickTool) Name() string {
	return "browser_right_click"
}

// Description returns the tool description.
func (t *RightClickTool) Description() string {
	return "Right click an element in the current browser session."
}

// Execute right clicks the element.
func (t *RightClickTool) Execute(ctx context.Context, in ElementInput) Result {
	out, err := t.commands.RightClick(ctx, in.FindBy, in.LocatorValue, in.Timeout)
	if err != nil {
		return failure(err, "Error in performing right click on the Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// PressKeyInput holds the browser_press_key arguments.
type PressKeyInput struct {
	FindBy       string `json:"findBy" jsonschema:"locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"`
	LocatorValue string `json:"locatorValue" jsonschema:"value matched by the locator strategy"`
	Key          string `json:"key" jsonschema:"key name such as ENTER, TAB, ESCAPE, CANCEL, ARROW_DOWN, NUMPAD1 or F5"`
	Timeout      *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for the element to become visible, 20 when absent or not positive"`
}

// PressKeyTool sends a named key to an element.
type PressKeyTool struct {
	commands *core.Commands
}

// NewPressKeyTool creates a new press key tool.
func NewPressKeyTool(commands *core.Commands) *PressKeyTool {
	return &PressKeyTool{commands: commands}
}

// Name returns the tool name.
func (t *PressKeyTool) Name() string {
	return "browser_press_key"
}

// Description returns the tool description.
func (t *PressKeyTool) Description() string {
	return "Press a keyboard key on an element, for example ENTER to submit a form."
}

// Execute presses the key.
func (t *PressKeyTool) Execute(ctx context.Context, in PressKeyInput) Result {
	out, err := t.commands.PressKey(ctx, in.FindBy, in.LocatorValue, in.Key, in.Timeout)
	if err != nil {
		return failure(err, "Error in pressing key to the Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// UploadFileInput holds the browser_upload_file arguments.
type UploadFileInput struct {
	FindBy       string `json:"findBy" jsonschema:"locator strategy: id, cssSelector, name, className, tag, linkText, partialLinkText or xpath"`
	LocatorValue string `json:"locatorValue" jsonschema:"value matched by the locator strategy of the file input"`
	FilePath     string `json:"filePath" jsonschema:"absolute path of the file to upload"`
	Timeout      *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for the element to become visible, 20 when absent or not positive"`
}

// UploadFileTool sets the file of a file input.
type UploadFileTool struct {
	commands *core.Commands
}

// NewUploadFileTool creates a new upload file tool.
func NewUploadFileTool(commands *core.Commands) *UploadFileTool {
	return &UploadFileTool{commands: commands}
}

// Name returns the tool name.
func (t *UploadFileTool) Name() string {
	return "browser_upload_file"
}

// Description returns the tool description.
func (t *UploadFileTool) Description() string {
	return "Upload a local file through a file input element."
}

// Execute uploads the file.
func (t *UploadFileTool) Execute(ctx context.Context, in UploadFileInput) Result {
	out, err := t.commands.UploadFile(ctx, in.FindBy, in.LocatorValue, in.FilePath, in.Timeout)
	if err != nil {
		return failure(err, "Error in uploading file to the Web Element [%s, %s]", in.FindBy, in.LocatorValue)
	}
	return success(out)
}

// DragAndDropInput holds the browser_drag_and_drop arguments.
type DragAndDropInput struct {
	SourceFindBy       string `json:"sourceFindBy" jsonschema:"locator strategy of the element to drag"`
	SourceLocatorValue string `json:"sourceLocatorValue" jsonschema:"locator value of the element to drag"`
	TargetFindBy       string `json:"targetFindBy" jsonschema:"locator strategy of the drop target"`
	TargetLocatorValue string `json:"targetLocatorValue" jsonschema:"locator value of the drop target"`
	Timeout            *int   `json:"timeout,omitempty" jsonschema:"seconds to wait for each element, 20 when absent or not positive"`
}

// DragAndDropTool drags one element onto another.
type DragAndDropTool struct {
	commands *core.Commands
}

// NewDragAndDropTool creates a new drag and drop tool.
func NewDragAndDropTool(commands *core.Commands) *DragAndDropTool {
	return &DragAndDropTool{commands: commands}
}

// Name returns the tool name.
func (t *DragAndDropTool) Name() string {
	return "browser_drag_and_drop"
}

// Description returns the tool description.
func (t *DragAndDropTool) Description() string {
	return "Drag a source element and drop it onto a target element. Both are found by " + locatorHelp + "."
}

// Execute performs the drag.
func (t *DragAndDropTool) Execute(ctx context.Context, in DragAndDropInput) Result {
	out, err := t.commands.DragAndDrop(ctx, in.SourceFindBy, in.SourceLocatorValue, in.TargetFindBy, in.TargetLocatorValue, in.Timeout)
	if err != nil {
		return failure(err, "Error in performing drag and drop")
	}
	return success(out)
}
