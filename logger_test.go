package loguru

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

// syncBuffer is a thread-safe WriteSyncer over an in-memory buffer, the
// fake sink used throughout these tests in place of a real file or
// terminal.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Sync() error { return nil }

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLoggerLogsToAttachedSink(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	if _, err := logger.LogTo(w, WithColored(false)); err != nil {
		t.Fatalf("LogTo: %v", err)
	}

	logger.Info("hello %s", "world")

	out := w.String()
	if !strings.Contains(out, "hello world") {
		t.Fatalf("output = %q, want it to contain the rendered message", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Fatalf("output = %q, want it to contain the level name", out)
	}
}

func TestLoggerHandlerLevelFiltersRecords(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	logger.LogTo(w, WithLevel(WarningLevel), WithColored(false))

	logger.Info("should be filtered")
	logger.Warning("should appear")

	out := w.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatal("a sink's level gate should drop records below its threshold")
	}
	if !strings.Contains(out, "should appear") {
		t.Fatal("a record at or above the sink's level should reach it")
	}
}

func TestLoggerFanOutToMultipleSinks(t *testing.T) {
	logger := NewLogger()
	w1, w2 := &syncBuffer{}, &syncBuffer{}
	logger.LogTo(w1, WithColored(false))
	logger.LogTo(w2, WithColored(false))

	logger.Info("broadcast")

	if !strings.Contains(w1.String(), "broadcast") {
		t.Fatal("first sink did not receive the record")
	}
	if !strings.Contains(w2.String(), "broadcast") {
		t.Fatal("second sink did not receive the record")
	}
}

func TestLoggerClearRemovesSink(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	id, _ := logger.LogTo(w, WithColored(false))

	if !logger.Clear(id) {
		t.Fatal("Clear should report success for a known handler id")
	}
	if logger.Clear(id) {
		t.Fatal("Clear should report failure for an already-removed id")
	}

	logger.Info("should not be written")
	if w.String() != "" {
		t.Fatalf("expected no output after Clear, got %q", w.String())
	}
}

func TestLoggerClearAll(t *testing.T) {
	logger := NewLogger()
	logger.LogTo(&syncBuffer{})
	logger.LogTo(&syncBuffer{})

	if n := logger.ClearAll(); n != 2 {
		t.Fatalf("ClearAll returned %d, want 2", n)
	}
	if n := logger.ClearAll(); n != 0 {
		t.Fatalf("ClearAll on an empty registry returned %d, want 0", n)
	}
}

func TestLoggerNameFilter(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	logger.LogTo(w, WithColored(false), WithFilter(NameFilter("no/such/package")))

	logger.Info("filtered out by namespace")
	if w.String() != "" {
		t.Fatalf("expected the namespace filter to drop the record, got %q", w.String())
	}
}

func TestLoggerException(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	logger.LogTo(w, WithColored(false))

	err := TraceError(errors.New("db timeout"))
	logger.Exception(err, "request failed")

	out := w.String()
	if !strings.Contains(out, "request failed") {
		t.Fatalf("output = %q, want the message", out)
	}
	if !strings.Contains(out, "db timeout") {
		t.Fatalf("output = %q, want the wrapped error text", out)
	}
	if !strings.Contains(out, "Traceback") {
		t.Fatalf("output = %q, want a rendered traceback", out)
	}
}

func TestLoggerLogToFileSinkByPath(t *testing.T) {
	dir := t.TempDir()
	logger := NewLogger()
	if _, err := logger.LogTo(dir + "/app.log"); err != nil {
		t.Fatalf("LogTo(path): %v", err)
	}
	logger.Info("on disk")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoggerLogToFuncSink(t *testing.T) {
	logger := NewLogger()
	var got []byte
	logger.LogTo(func(p []byte) error {
		got = append(got, p...)
		return nil
	}, WithColored(false))

	logger.Info("via callback")
	if !strings.Contains(string(got), "via callback") {
		t.Fatalf("callback sink got %q", got)
	}
}

func TestLoggerLogToRejectsUnsupportedSink(t *testing.T) {
	logger := NewLogger()
	if _, err := logger.LogTo(42); err == nil {
		t.Fatal("expected an error for an unsupported sink type")
	}
}

func TestLoggerJSONEncoderSink(t *testing.T) {
	logger := NewLogger()
	w := &syncBuffer{}
	logger.LogTo(w, WithSinkEncoder(&JSONEncoder{}))

	logger.Info("structured")
	out := w.String()
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected JSON output, got %q", out)
	}
	if !strings.Contains(out, `"message":"structured"`) {
		t.Fatalf("output = %q, want a message field", out)
	}
}
