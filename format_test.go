package loguru

import (
	"strings"
	"testing"
	"time"
)

func sampleRecord() *Record {
	return &Record{
		Time:     time.Date(2026, 7, 31, 10, 30, 0, 0, time.UTC),
		Level:    InfoLevel,
		Message:  "hello world",
		Name:     "pkg/server",
		File:     FileInfo{Name: "main.go", Path: "/src/main.go"},
		Function: "main",
		Line:     42,
		Module:   "main",
		Thread:   ThreadInfo{ID: 1, Name: "goroutine-1"},
		Process:  ProcessInfo{ID: 100, Name: "app"},
	}
}

func TestCompileAndRenderDefaultFormat(t *testing.T) {
	cf, err := compileFormatForLevel(DefaultFormat, false, InfoLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel: %v", err)
	}
	out, err := cf.render(sampleRecord())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("rendered = %q, want the message", out)
	}
	if !strings.Contains(out, "INFO") {
		t.Fatalf("rendered = %q, want the level name", out)
	}
	if !strings.Contains(out, "pkg/server:main:42") {
		t.Fatalf("rendered = %q, want name:function:line", out)
	}
}

func TestCompileFormatColoredAddsANSI(t *testing.T) {
	cf, err := compileFormatForLevel(DefaultFormat, true, InfoLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel: %v", err)
	}
	out, err := cf.render(sampleRecord())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "\x1b[") {
		t.Fatal("colored rendering should contain ANSI escapes")
	}
}

func TestLevelPlaceholderPadding(t *testing.T) {
	cf, err := compileFormatForLevel("[{level: <8}]", false, InfoLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel: %v", err)
	}
	out, _ := cf.render(sampleRecord())
	if out != "[INFO    ]" {
		t.Fatalf("rendered = %q, want left-padded to 8 chars", out)
	}
}

func TestSubfieldPlaceholders(t *testing.T) {
	cf, err := compileFormatForLevel("{level.no} {file.path} {thread.id} {process.name}", false, InfoLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel: %v", err)
	}
	out, err := cf.render(sampleRecord())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "20 /src/main.go 1 app" {
		t.Fatalf("rendered = %q", out)
	}
}

func TestUnknownPlaceholderFieldErrors(t *testing.T) {
	if _, err := compileFormatForLevel("{bogus}", false, InfoLevel); err == nil {
		t.Fatal("expected an error for an unknown placeholder field")
	}
}

func TestUnknownSubfieldErrors(t *testing.T) {
	if _, err := compileFormatForLevel("{level.bogus}", false, InfoLevel); err == nil {
		t.Fatal("expected an error for an unknown subfield")
	}
}

func TestUnterminatedTagErrors(t *testing.T) {
	if _, err := compileFormatForLevel("<green>{message}", false, InfoLevel); err == nil {
		t.Fatal("expected an error for an unclosed markup tag")
	}
}

func TestMismatchedTagErrors(t *testing.T) {
	if _, err := compileFormatForLevel("<green>{message}</red>", false, InfoLevel); err == nil {
		t.Fatal("expected an error for a mismatched closing tag")
	}
}

func TestLevelPseudoTagUsesPerLevelStyle(t *testing.T) {
	infoCf, err := compileFormatForLevel("<level>{message}</level>", true, InfoLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel(InfoLevel): %v", err)
	}
	errorCf, err := compileFormatForLevel("<level>{message}</level>", true, ErrorLevel)
	if err != nil {
		t.Fatalf("compileFormatForLevel(ErrorLevel): %v", err)
	}

	infoOut, _ := infoCf.render(sampleRecord())
	errRec := sampleRecord()
	errRec.Level = ErrorLevel
	errorOut, _ := errorCf.render(errRec)

	if infoOut == errorOut {
		t.Fatal("the <level> pseudo-tag should resolve to a different style per level")
	}
}

func TestPadAlignments(t *testing.T) {
	cases := []struct {
		align byte
		want  string
	}{
		{'<', "ab   "},
		{'>', "   ab"},
		{'^', " ab  "},
	}
	for _, c := range cases {
		got := pad("ab", 5, c.align, ' ')
		if got != c.want {
			t.Fatalf("pad(align=%q) = %q, want %q", c.align, got, c.want)
		}
	}
}
