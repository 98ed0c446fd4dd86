package loguru

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSinkWriteAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	fs, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer fs.Close()

	if _, err := fs.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := fs.Write([]byte("world\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	fs.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "hello\nworld\n" {
		t.Fatalf("file contents = %q", data)
	}
}

func TestFileSinkRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	fs, err := NewFileSink(path, WithRotation("10 B"))
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer fs.Close()

	if _, err := fs.Write([]byte("0123456789")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// The next write exceeds the 10-byte limit and should trigger a rotation.
	if _, err := fs.Write([]byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	fs.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 files after rotation, got %d", len(entries))
	}
}

func TestFileSinkManualRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	fs, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer fs.Close()

	fs.Write([]byte("first\n"))
	if err := fs.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	fs.Write([]byte("second\n"))
	fs.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files after one manual rotation, got %d", len(entries))
	}
}

func TestFileSinkRetentionPrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	fs, err := NewFileSink(path, WithRetention(1))
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	defer fs.Close()

	fs.Write([]byte("a\n"))
	fs.Rotate()
	fs.Write([]byte("b\n"))
	fs.Rotate()
	fs.Write([]byte("c\n"))
	fs.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	// Retaining 1 backup plus the live file should cap the directory at 2 entries.
	if len(entries) > 2 {
		t.Fatalf("expected retention to prune stale backups, found %d entries", len(entries))
	}
}

func TestFileSinkCompressesOnClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	fs, err := NewFileSink(path, WithCompression("gz"))
	if err != nil {
		t.Fatalf("NewFileSink: %v", err)
	}
	fs.Write([]byte("payload\n"))
	if err := fs.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path + ".gz"); err != nil {
		t.Fatalf("expected a compressed file at %s.gz: %v", path, err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("the uncompressed file should no longer exist after compression")
	}
}
