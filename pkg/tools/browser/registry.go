package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	core "github.com/entrhq/browserd/pkg/browser"
	"github.com/entrhq/browserd/pkg/metrics"
)

// Toolset owns the browser tools and registers them on an MCP server.
type Toolset struct {
	commands *core.Commands
	logger   core.Logger
	metrics  *metrics.Metrics
}

// NewToolset creates the toolset. logger and m may be nil.
func NewToolset(commands *core.Commands, logger core.Logger, m *metrics.Metrics) *Toolset {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Toolset{commands: commands, logger: logger, metrics: m}
}

// Names returns the tool names in registration order.
func (s *Toolset) Names() []string {
	regs := s.registrations()
	names := make([]string, 0, len(regs))
	for _, r := range regs {
		names = append(names, r.name)
	}
	return names
}

// Register adds every browser tool to server.
func (s *Toolset) Register(server *mcp.Server) error {
	for _, r := range s.registrations() {
		if err := r.register(server); err != nil {
			return err
		}
	}
	return nil
}

type registration struct {
	name     string
	register func(*mcp.Server) error
}

func (s *Toolset) registrations() []registration {
	c := s.commands
	return []registration{
		bind[OpenInput](s, NewOpenTool(c, s.metrics)),
		bind[CloseInput](s, NewCloseTool(c)),
		bind[ListSessionsInput](s, NewListSessionsTool(c)),
		bind[NavigateInput](s, NewNavigateTool(c)),
		bind[ClickInput](s, NewClickTool(c)),
		bind[SendKeysInput](s, NewSendKeysTool(c)),
		bind[ScreenshotInput](s, NewScreenshotTool(c)),
		bind[ElementInput](s, NewGetTextTool(c)),
		bind[ElementInput](s, NewHoverTool(c)),
		bind[DragAndDropInput](s, NewDragAndDropTool(c)),
		bind[ElementInput](s, NewDoubleClickTool(c)),
		bind[ElementInput](s, NewRightClickTool(c)),
		bind[PressKeyInput](s, NewPressKeyTool(c)),
		bind[UploadFileInput](s, NewUploadFileTool(c)),
		bind[PageSourceInput](s, NewPageSourceTool(c)),
		bind[ExecuteScriptInput](s, NewExecuteScriptTool(c)),
		bind[TabsInput](s, NewTabsTool(c)),
	}
}

// bind prepares the registration of one tool. In cannot be inferred from
// the tool's method set, so callers name it explicitly.
func bind[In any](s *Toolset, tool Tool[In]) registration {
	return registration{
		name: tool.Name(),
		register: func(server *mcp.Server) error {
			def := &mcp.Tool{
				Name:        tool.Name(),
				Description: tool.Description(),
			}
			if p, ok := tool.(schemaProvider); ok {
				schema, err := p.Schema()
				if err != nil {
					return err
				}
				def.InputSchema = schema
			}

			mcp.AddTool(server, def, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
				r := s.run(ctx, tool.Name(), func(ctx context.Context) Result {
					return tool.Execute(ctx, in)
				})
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: r.Text}},
					IsError: r.Failed(),
				}, nil, nil
			})
			return nil
		},
	}
}

// run executes one call, converting panics into failures and recording the
// outcome.
func (s *Toolset) run(ctx context.Context, name string, exec func(context.Context) Result) (r Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			r = failure(fmt.Errorf("panic: %v", p), "Error in %s", name)
		}

		if r.Failed() {
			s.logger.Errorf("%s failed: %s", name, r.Text)
			s.metrics.RecordFault(string(core.KindOf(r.Err)))
		}
		s.metrics.RecordToolCall(name, r.Failed(), time.Since(start).Seconds())
		s.metrics.SetActiveSessions(s.commands.Registry().Len())
	}()

	return exec(ctx)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
