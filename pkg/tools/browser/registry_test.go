package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/entrhq/browserd/pkg/browser"
)

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Infof(string, ...interface{}) {}
func (l *recordingLogger) Warnf(string, ...interface{}) {}
func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func connect(t *testing.T, ts *Toolset) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "browserd", Version: "test"}, nil)
	require.NoError(t, ts.Register(server))

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestRegisterListsAllTools(t *testing.T) {
	f := newFixture(t)
	session := connect(t, f.toolset)

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.ElementsMatch(t, f.toolset.Names(), names)
}

func TestServerRoundTrip(t *testing.T) {
	f := newFixture(t)
	logger := &recordingLogger{}
	f.toolset = NewToolset(f.commands, logger, f.metrics)
	session := connect(t, f.toolset)
	ctx := context.Background()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "browser_click",
		Arguments: map[string]any{"findBy": "id", "value": "go"},
	})
	require.NoError(t, err, "faults are results, not protocol errors")
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(textOf(t, res), "Error in clicking Web Element [id, go]: no active browser session"), textOf(t, res))

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name: "browser_open",
		Arguments: map[string]any{
			"browserName": "firefox",
			"options":     map[string]any{"headless": true, "arguments": []string{"--width=800"}, "profile": "ignored"},
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))
	assert.True(t, strings.HasPrefix(textOf(t, res), "Browser started successfully with session_id: firefox-"))
	assert.Equal(t, []string{"--headless", "--width=800"}, f.launcher.Launches()[0].Args)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "browser_navigate",
		Arguments: map[string]any{"url": "example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Successfully navigated to https://example.com", textOf(t, res))

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "browser_tabs",
		Arguments: map[string]any{"action": "SELECT", "index": 3},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "out of range")

	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("browser_click", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ToolCalls.WithLabelValues("browser_navigate", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Faults.WithLabelValues(string(core.IndexOutOfRange))))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ActiveSessions))

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Len(t, logger.errors, 2)
}

func TestRunRecoversPanics(t *testing.T) {
	f := newFixture(t)
	logger := &recordingLogger{}
	ts := NewToolset(f.commands, logger, f.metrics)

	r := ts.run(context.Background(), "browser_click", func(context.Context) Result {
		panic("driver went away")
	})
	require.True(t, r.Failed())
	assert.Equal(t, "Error in browser_click: panic: driver went away", r.Text)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Faults.WithLabelValues("unknown")))
	assert.Len(t, logger.errors, 1)
}
