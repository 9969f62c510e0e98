package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoggerWritesAndFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	l, err := NewLogger(LevelInfo, path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	l.Debug("hidden %d", 1)
	l.Info("visible %s", "line")
	l.Error("broken: %v", os.ErrNotExist)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Fatal("debug line must be filtered at info level")
	}
	if !strings.Contains(out, "[INFO] visible line") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "[ERROR]") {
		t.Fatalf("output = %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"warn":    LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"unknown": LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPackageFuncsSafeWithoutInit(t *testing.T) {
	GlobalLogger = nil
	Info("no logger, no panic")
	Warn("still fine")
}
