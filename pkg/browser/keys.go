package browser

import (
	"fmt"
	"strings"

	"github.com/entrhq/browserd/pkg/browser/driver"
)

// keys maps accepted key names to driver key names.
var keys = map[string]driver.Key{
	"ENTER":       "Enter",
	"RETURN":      "Enter",
	"TAB":         "Tab",
	"ESCAPE":      "Escape",
	"ESC":         "Escape",
	"SPACE":       " ",
	"BACK_SPACE":  "Backspace",
	"BACKSPACE":   "Backspace",
	"DELETE":      "Delete",
	"INSERT":      "Insert",
	"HOME":        "Home",
	"END":         "End",
	"PAGE_UP":     "PageUp",
	"PAGE_DOWN":   "PageDown",
	"ARROW_UP":    "ArrowUp",
	"ARROW_DOWN":  "ArrowDown",
	"ARROW_LEFT":  "ArrowLeft",
	"ARROW_RIGHT": "ArrowRight",
	"UP":          "ArrowUp",
	"DOWN":        "ArrowDown",
	"LEFT":        "ArrowLeft",
	"RIGHT":       "ArrowRight",
	"SHIFT":       "Shift",
	"CONTROL":     "Control",
	"ALT":         "Alt",
	"META":        "Meta",
	"COMMAND":     "Meta",

	"LEFT_SHIFT":   "ShiftLeft",
	"LEFT_CONTROL": "ControlLeft",
	"LEFT_ALT":     "AltLeft",

	"CANCEL":    "Cancel",
	"HELP":      "Help",
	"CLEAR":     "Clear",
	"PAUSE":     "Pause",
	"SEMICOLON": "Semicolon",
	"EQUALS":    "Equal",

	// numeric keypad
	"MULTIPLY":  "NumpadMultiply",
	"ADD":       "NumpadAdd",
	"SUBTRACT":  "NumpadSubtract",
	"DECIMAL":   "NumpadDecimal",
	"DIVIDE":    "NumpadDivide",
	"SEPARATOR": "Comma",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("F%d", i)
		keys[name] = driver.Key(name)
	}
	for i := 0; i <= 9; i++ {
		keys[fmt.Sprintf("NUMPAD%d", i)] = driver.Key(fmt.Sprintf("Numpad%d", i))
	}
}

// ParseKey resolves a key name such as ENTER, arrow_down or F5.
func ParseKey(name string) (driver.Key, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	if k, ok := keys[normalized]; ok {
		return k, nil
	}
	return "", newFault(UnsupportedKey, map[string]interface{}{"key": name},
		"unsupported key %q", name)
}
