package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.WithOperation("install").WithInstance("acme").Info("install step completed", "step", "clone repository")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "subctl.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(contents))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	if entry["msg"] != "install step completed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["instance"] != "acme" || entry["operation"] != "install" {
		t.Errorf("child logger attributes missing: %v", entry)
	}
	if entry["step"] != "clone repository" {
		t.Errorf("per-call attribute missing: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelError)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.Info("filtered")
	logger.Error("kept")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "subctl.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(contents), "filtered") {
		t.Error("info entry written at error level")
	}
	if !strings.Contains(string(contents), "kept") {
		t.Error("error entry missing")
	}
}

func TestChildLoggersDoNotMutateParent(t *testing.T) {
	parent := NopLogger()
	child := parent.WithInstance("acme")
	if len(parent.attrs) != 0 {
		t.Error("WithInstance mutated the parent logger")
	}
	if len(child.attrs) != 1 {
		t.Errorf("child attrs = %d, want 1", len(child.attrs))
	}
}

func TestWith(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	logger.WithOperation("install").With("branch", "main").Info("instance installed")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "subctl.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(contents))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["branch"] != "main" || entry["operation"] != "install" {
		t.Errorf("With attributes missing: %v", entry)
	}
}

func TestWithIgnoresDanglingKey(t *testing.T) {
	parent := NopLogger()
	if child := parent.With(); child != parent {
		t.Error("With() with no args should return the receiver")
	}
	child := parent.With("branch", "main", "dangling")
	if len(child.attrs) != 1 {
		t.Errorf("child attrs = %d, want 1", len(child.attrs))
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCloseTwice(t *testing.T) {
	logger, err := NewLogger(t.TempDir(), LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
