package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	core "github.com/entrhq/browserd/pkg/browser"
)

// Tool is one MCP tool taking arguments of type In.
type Tool[In any] interface {
	Name() string
	Description() string
	Execute(ctx context.Context, in In) Result
}

// schemaProvider is implemented by tools whose input schema cannot be
// inferred from their argument struct alone.
type schemaProvider interface {
	Schema() (*jsonschema.Schema, error)
}

// Result is the outcome of one tool call. Text is always set; Err is the
// underlying failure, if any.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the call failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

func success(text string) Result {
	return Result{Text: text}
}

// failure renders err behind an operation prefix such as
// "Error in clicking Web Element [id, go]". The session id is appended when
// the fault carries one the message does not already mention.
func failure(err error, format string, args ...interface{}) Result {
	text := fmt.Sprintf(format, args...) + ": " + err.Error()

	var f *core.Fault
	if errors.As(err, &f) {
		if id, ok := f.Details["session_id"].(string); ok && id != "" && !strings.Contains(text, id) {
			text += " (session " + id + ")"
		}
	}
	return Result{Text: text, Err: err}
}
