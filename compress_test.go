package loguru

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompressFormats(t *testing.T) {
	for _, format := range []string{"gz", "bz2", "xz", "lzma", "zip"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			src := filepath.Join(dir, "app.log")
			if err := os.WriteFile(src, []byte("line one\nline two\n"), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}

			fn, err := NewCompressFunc(format)
			if err != nil {
				t.Fatalf("NewCompressFunc(%q): %v", format, err)
			}
			if err := fn(src); err != nil {
				t.Fatalf("compress: %v", err)
			}

			if _, err := os.Stat(src); err == nil {
				t.Fatal("the original file should be removed after compression")
			}
			if _, err := os.Stat(src + "." + format); err != nil {
				t.Fatalf("expected compressed file %s.%s: %v", src, format, err)
			}
		})
	}
}

func TestCompressFormatCaseAndDotInsensitive(t *testing.T) {
	if _, err := NewCompressFunc(".GZ"); err != nil {
		t.Fatalf("NewCompressFunc(.GZ): %v", err)
	}
}

func TestCompressUnknownFormat(t *testing.T) {
	if _, err := NewCompressFunc("rar"); err == nil {
		t.Fatal("expected an error for an unsupported compression format")
	}
}
