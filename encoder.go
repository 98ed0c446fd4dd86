package loguru

// Encoder serializes a Record into a Buffer as an alternative to the
// markup/format-template pipeline in format.go. A Handler configured with
// WithEncoder bypasses template rendering entirely and calls Encode directly.
type Encoder interface {
	Encode(buf *Buffer, rec *Record)
}
