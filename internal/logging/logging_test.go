package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "hydromap.log")

	logger, sink, err := New(logFile, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sink.Close()

	logger.Info("station resolved", "station", "05JF003")
	logger.Debug("should be filtered at info level")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "station resolved") || !strings.Contains(content, "05JF003") {
		t.Errorf("Expected the info record in the log file, got: %s", content)
	}
	if strings.Contains(content, "should be filtered") {
		t.Error("Debug record must be filtered when debug is off")
	}
}

func TestNewDebugLevel(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "hydromap.log")

	logger, sink, err := New(logFile, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sink.Close()

	logger.Debug("debug enabled")

	data, _ := os.ReadFile(logFile)
	if !strings.Contains(string(data), "debug enabled") {
		t.Error("Expected debug record with debug enabled")
	}
}

func TestNewWithoutFile(t *testing.T) {
	logger, sink, err := New("", false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if sink != nil {
		t.Error("Expected no file handle without a log file")
	}
	if logger == nil {
		t.Fatal("Expected a console-only logger")
	}
}

func TestNewAppends(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "hydromap.log")

	for i := 0; i < 2; i++ {
		logger, sink, err := New(logFile, false)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		logger.Info("run", "n", i)
		sink.Close()
	}

	data, _ := os.ReadFile(logFile)
	if got := strings.Count(string(data), "msg=run"); got != 2 {
		t.Errorf("Expected the log file to be appended across runs, found %d records", got)
	}
}
