package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	log, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("catalog_loaded")

	// lumberjack opens the file on first write
	if _, err := os.Stat(filepath.Join(dir, "announcer.log")); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}

func TestNewLogger_LevelOption(t *testing.T) {
	log, err := NewLogger(t.TempDir(), WithLevel("warn"))
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(-1) { // debug
		t.Fatalf("debug should be disabled at warn")
	}
	if log.Core().Enabled(0) { // info
		t.Fatalf("info should be disabled at warn")
	}

	log, err = NewLogger(t.TempDir(), WithLevel("nonsense"))
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !log.Core().Enabled(0) {
		t.Fatalf("unknown level should keep info")
	}
}
