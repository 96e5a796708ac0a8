package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// useTempLogDir points the package at a fresh directory and resets its
// global state for the duration of the test.
func useTempLogDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	origLogDir := logDir
	origLevel := CurrentLevel()

	reset := func(d string) {
		logDir = d
		initErr = nil
		initOnce = sync.Once{}
		runID = ""
		runIDOnce = sync.Once{}
	}
	reset(dir)

	t.Cleanup(func() {
		reset(origLogDir)
		SetLevel(origLevel)
	})
	return dir
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	dir := useTempLogDir(t)

	logger, err := NewLogger("registry")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "registry" {
		t.Errorf("Expected component 'registry', got %q", logger.component)
	}
	if logger.RunID() == "" {
		t.Error("Expected non-empty run ID")
	}
	if filepath.Dir(logger.LogPath()) != dir {
		t.Errorf("Expected log file in %s, got %s", dir, logger.LogPath())
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Errorf("Log file does not exist at %s: %v", logger.LogPath(), err)
	}
}

func TestLoggerFormatting(t *testing.T) {
	useTempLogDir(t)
	SetLevel(LevelDebug)

	logger, err := NewLogger("tools")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("Debug message %d", 1)
	logger.Infof("Info message")
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, pattern := range []string{
		"[tools] [DEBUG] Debug message 1",
		"[tools] [INFO] Info message",
		"[tools] [WARN] Warning message",
		"[tools] [ERROR] Error message",
	} {
		if !strings.Contains(content, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestSetLevelFilters(t *testing.T) {
	useTempLogDir(t)
	SetLevel(LevelWarn)

	logger, err := NewLogger("filter")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("shown warning")
	logger.Errorf("shown error")

	content := readLog(t, logger)
	if strings.Contains(content, "hidden") {
		t.Errorf("Expected entries below WARN to be dropped, got:\n%s", content)
	}
	if !strings.Contains(content, "shown warning") || !strings.Contains(content, "shown error") {
		t.Errorf("Expected WARN and ERROR entries, got:\n%s", content)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMultipleComponentsShareFile(t *testing.T) {
	useTempLogDir(t)

	logger1, err := NewLogger("component1")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.RunID() != logger2.RunID() {
		t.Errorf("Expected same run ID, got %q and %q", logger1.RunID(), logger2.RunID())
	}
	if logger1.LogPath() != logger2.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", logger1.LogPath(), logger2.LogPath())
	}

	logger1.Infof("Message from component1")
	logger2.Infof("Message from component2")

	content := readLog(t, logger1)
	if !strings.Contains(content, "[component1]") || !strings.Contains(content, "[component2]") {
		t.Errorf("Expected entries from both components, got:\n%s", content)
	}
}

func TestFallbackToStderr(t *testing.T) {
	dir := useTempLogDir(t)
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("Failed to create blocker file: %v", err)
	}
	logDir = filepath.Join(blocker, "logs")

	logger, err := NewLogger("fallback")
	if err == nil {
		t.Fatal("Expected an error when the log directory cannot be created")
	}
	if logger == nil {
		t.Fatal("Expected a fallback logger")
	}
	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path in fallback mode, got %q", logger.LogPath())
	}
	if logger.Writer() != os.Stderr {
		t.Error("Expected fallback logger to write to stderr")
	}
}

func TestLoggerClose(t *testing.T) {
	useTempLogDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	useTempLogDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(fileName, "-browserd.log") {
		t.Errorf("Expected log file to end with '-browserd.log', got %q", fileName)
	}
	if runPart := strings.TrimSuffix(fileName, "-browserd.log"); runPart != logger.RunID() {
		t.Errorf("Expected file name to start with run ID %q, got %q", logger.RunID(), runPart)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard("quiet")
	logger.Errorf("nothing to see")
	if logger.LogPath() != "" {
		t.Errorf("Expected no log path, got %q", logger.LogPath())
	}
}
