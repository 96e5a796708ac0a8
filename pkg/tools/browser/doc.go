// Package browser exposes the browser commands as MCP tools.
//
// Each tool maps one call onto a browser.Commands method and turns its
// outcome into text. Failures never surface as protocol errors: the fault is
// logged, rendered as a message naming the operation and its key parameters,
// and returned as a normal text result with IsError set.
//
// Available tools:
//   - browser_open, browser_close, browser_list_sessions: session lifecycle
//   - browser_navigate: load a URL in the current session
//   - browser_click, browser_send_keys, browser_get_text, browser_hover,
//     browser_double_click, browser_right_click, browser_press_key,
//     browser_upload_file, browser_drag_and_drop: element interaction
//   - browser_take_screenshot, browser_page_source,
//     browser_execute_javascript: page inspection
//   - browser_tabs: open, close and select tabs by index
//
// Register every tool on a server with Toolset.Register.
package browser
