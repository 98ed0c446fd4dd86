package loguru

import (
	"testing"
	"time"
)

func TestBufferAppendHelpers(t *testing.T) {
	b := getBuffer()
	defer putBuffer(b)

	b.AppendString("n=")
	b.AppendInt(-7)
	b.AppendByte(' ')
	b.AppendFloat(3.5)
	b.AppendByte(' ')
	b.AppendBool(true)

	want := "n=-7 3.5 true"
	if got := string(b.Bytes()); got != want {
		t.Fatalf("buffer = %q, want %q", got, want)
	}
}

func TestBufferAppendTime(t *testing.T) {
	b := getBuffer()
	defer putBuffer(b)

	ts := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	b.AppendTime(ts, time.RFC3339)
	if got := string(b.Bytes()); got != "2026-07-31T00:00:00Z" {
		t.Fatalf("AppendTime = %q", got)
	}
}

func TestBufferResetAndPoolReuse(t *testing.T) {
	b := getBuffer()
	b.AppendString("leftover")
	putBuffer(b)

	b2 := getBuffer()
	if b2.Len() != 0 {
		t.Fatalf("a buffer drawn from the pool should start empty, got len=%d", b2.Len())
	}
	putBuffer(b2)
}
