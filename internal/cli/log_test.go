package cli

import (
	"bytes"
	"testing"
	"time"
)

func TestNewCLI(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	if c.Logger == nil {
		t.Fatal("New() should create a logger")
	}

	c.Logger.Info("test message")
	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug should be suppressed at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug should be logged after raising verbosity")
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	prog := newProgress(c.Logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	// Small delay to ensure measurable duration
	time.Sleep(10 * time.Millisecond)

	prog.done("test completed")

	if buf.Len() == 0 {
		t.Error("progress.done() should produce output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("test completed")) {
		t.Error("progress.done() output should contain message")
	}
}
