package loguru

import (
	"strings"
	"time"
)

// LogfmtEncoder writes records in logfmt format (key=value pairs).
// Thread-safe: no mutable state stored between Encode calls.
type LogfmtEncoder struct {
	TimeLayout string
}

func (e *LogfmtEncoder) timeLayout() string {
	if e.TimeLayout != "" {
		return e.TimeLayout
	}
	return time.RFC3339
}

// Encode writes a full logfmt record. Thread-safe.
func (e *LogfmtEncoder) Encode(buf *Buffer, rec *Record) {
	buf.AppendString("time=")
	buf.AppendTime(rec.Time, e.timeLayout())

	buf.AppendString(" level=")
	buf.AppendString(strings.ToLower(rec.Level.String()))

	buf.AppendString(" message=")
	appendLogfmtValue(buf, rec.Message)

	if rec.Name != "" {
		buf.AppendString(" name=")
		appendLogfmtValue(buf, rec.Name)
	}

	if rec.File.Name != "" {
		buf.AppendString(" file=")
		appendLogfmtValue(buf, rec.File.Path)
		buf.AppendString(" line=")
		buf.AppendInt(int64(rec.Line))
	}

	if rec.Function != "" {
		buf.AppendString(" function=")
		appendLogfmtValue(buf, rec.Function)
	}

	if rec.Exception != nil {
		buf.AppendString(" exception=")
		appendLogfmtValue(buf, renderTraceback(rec.Exception, false))
	}

	buf.AppendByte('\n')
}

// --- Logfmt helpers ---

func appendLogfmtValue(buf *Buffer, s string) {
	if s == "" {
		buf.AppendString(`""`)
		return
	}
	needsQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '"' || c == '\\' || c == '=' || c < 0x20 {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		buf.AppendString(s)
		return
	}
	buf.AppendByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			buf.AppendByte('\\')
		}
		buf.AppendByte(c)
	}
	buf.AppendByte('"')
}
