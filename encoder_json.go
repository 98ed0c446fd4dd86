package loguru

import "time"

// JSONEncoder writes records as JSON without using encoding/json.
// Thread-safe: no mutable state stored between Encode calls.
type JSONEncoder struct {
	TimeKey    string
	LevelKey   string
	MessageKey string
	NameKey    string
	FileKey    string
	LineKey    string
	FunctionKey string
	ModuleKey  string
	ExceptionKey string
	TimeLayout string
}

func (e *JSONEncoder) key(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}

func (e *JSONEncoder) timeLayout() string {
	if e.TimeLayout != "" {
		return e.TimeLayout
	}
	return time.RFC3339Nano
}

// Encode writes a full JSON record. Thread-safe.
func (e *JSONEncoder) Encode(buf *Buffer, rec *Record) {
	buf.AppendByte('{')

	buf.AppendByte('"')
	buf.AppendString(e.key(e.TimeKey, "time"))
	buf.AppendString(`":"`)
	buf.AppendTime(rec.Time, e.timeLayout())
	buf.AppendByte('"')

	buf.AppendString(`,"`)
	buf.AppendString(e.key(e.LevelKey, "level"))
	buf.AppendString(`":"`)
	buf.AppendString(rec.Level.String())
	buf.AppendByte('"')

	buf.AppendString(`,"`)
	buf.AppendString(e.key(e.MessageKey, "message"))
	buf.AppendString(`":`)
	appendJSONString(buf, rec.Message)

	if rec.Name != "" {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.NameKey, "name"))
		buf.AppendString(`":`)
		appendJSONString(buf, rec.Name)
	}

	if rec.File.Name != "" {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.FileKey, "file"))
		buf.AppendString(`":`)
		appendJSONString(buf, rec.File.Path)
	}

	if rec.Line != 0 {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.LineKey, "line"))
		buf.AppendString(`":`)
		buf.AppendInt(int64(rec.Line))
	}

	if rec.Function != "" {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.FunctionKey, "function"))
		buf.AppendString(`":`)
		appendJSONString(buf, rec.Function)
	}

	if rec.Module != "" {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.ModuleKey, "module"))
		buf.AppendString(`":`)
		appendJSONString(buf, rec.Module)
	}

	if rec.Exception != nil {
		buf.AppendString(`,"`)
		buf.AppendString(e.key(e.ExceptionKey, "exception"))
		buf.AppendString(`":`)
		appendJSONString(buf, renderTraceback(rec.Exception, false))
	}

	buf.AppendString("}\n")
}

// --- JSON helpers ---

func appendJSONString(buf *Buffer, s string) {
	buf.AppendByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			buf.AppendString(`\"`)
		case '\\':
			buf.AppendString(`\\`)
		case '\n':
			buf.AppendString(`\n`)
		case '\r':
			buf.AppendString(`\r`)
		case '\t':
			buf.AppendString(`\t`)
		default:
			if c < 0x20 {
				buf.AppendString(`\u00`)
				buf.AppendByte(hexChar(c >> 4))
				buf.AppendByte(hexChar(c & 0x0f))
			} else {
				buf.AppendByte(c)
			}
		}
	}
	buf.AppendByte('"')
}

func hexChar(c byte) byte {
	if c < 10 {
		return '0' + c
	}
	return 'a' + c - 10
}
