package loguru

import (
	"sync"
	"sync/atomic"
)

// Handler owns one sink's full emission pipeline: level gate, filter,
// per-level format compilation, and the write itself (spec.md §4.2).
// Handlers are created through Logger.LogTo and never shared between
// loggers; each keeps its own WriteSyncer.
type Handler struct {
	writer   WriteSyncer
	template string
	colored  bool
	pretty   bool // render tracebacks with the colorized caught-point line
	filter   Filter
	encoder  Encoder // when set, bypasses the template pipeline entirely

	level atomic.Int32 // stores a Level.No

	mu      sync.RWMutex
	formats map[string]*compiledFormat // by level name; levels added later are compiled lazily
}

// HandlerOption configures a Handler at construction time.
type HandlerOption func(*Handler)

// WithHandlerLevel sets the handler's own minimum level, independent of
// any logger-wide level (spec.md §4.2: "each handler has its own level").
func WithHandlerLevel(lvl Level) HandlerOption {
	return func(h *Handler) { h.level.Store(int32(lvl.No)) }
}

// WithHandlerFilter attaches a Filter run after the level gate.
func WithHandlerFilter(f Filter) HandlerOption {
	return func(h *Handler) { h.filter = f }
}

// WithColor enables markup-to-ANSI rendering for this handler's format
// and, when pretty is also true, colorizes the caught-point traceback
// line (spec.md §4.2, §4.4).
func WithColor(colored, pretty bool) HandlerOption {
	return func(h *Handler) { h.colored = colored; h.pretty = pretty }
}

// WithEncoder swaps the markup/format-template pipeline for a structured
// Encoder (JSONEncoder, LogfmtEncoder, or a custom one). A handler built
// with WithEncoder ignores its template entirely.
func WithEncoder(enc Encoder) HandlerOption {
	return func(h *Handler) { h.encoder = enc }
}

// NewHandler builds a Handler writing through w, using template as its
// format string (DefaultFormat if empty).
func NewHandler(w WriteSyncer, template string, opts ...HandlerOption) *Handler {
	if template == "" {
		template = DefaultFormat
	}
	h := &Handler{
		writer:   w,
		template: template,
		formats:  make(map[string]*compiledFormat),
	}
	h.level.Store(int32(TraceLevel.No))
	for _, opt := range opts {
		opt(h)
	}
	// Precompile one format per registered level. A template that fails
	// to compile leaves the map empty; formatFor reports the error on Emit.
	if formats, err := compileFormats(h.template, h.colored); err == nil {
		h.formats = formats
	}
	return h
}

// Enabled reports whether lvl clears this handler's own level gate.
func (h *Handler) Enabled(lvl Level) bool {
	return lvl.No >= int(h.level.Load())
}

// SetLevel changes the handler's level gate atomically.
func (h *Handler) SetLevel(lvl Level) { h.level.Store(int32(lvl.No)) }

func (h *Handler) formatFor(lvl Level) (*compiledFormat, error) {
	h.mu.RLock()
	cf, ok := h.formats[lvl.Name]
	h.mu.RUnlock()
	if ok {
		return cf, nil
	}

	cf, err := compileFormatForLevel(h.template, h.colored, lvl)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.formats[lvl.Name] = cf
	h.mu.Unlock()
	return cf, nil
}

// Emit runs the record through this handler's gate, filter, format, and
// write steps (spec.md §4.2). A record that fails the gate or filter is
// silently dropped for this handler; everything else propagates as an
// error to the caller of Logger's logging method.
func (h *Handler) Emit(rec *Record) error {
	if !h.Enabled(rec.Level) {
		return nil
	}
	if h.filter != nil && !h.filter(*rec) {
		return nil
	}

	if h.encoder != nil {
		buf := getBuffer()
		h.encoder.Encode(buf, rec)
		_, err := h.writer.Write(buf.Bytes())
		putBuffer(buf)
		return err
	}

	cf, err := h.formatFor(rec.Level)
	if err != nil {
		return err
	}
	line, err := cf.render(rec)
	if err != nil {
		return err
	}

	buf := getBuffer()
	buf.AppendString(line)
	if !endsWithNewline(line) {
		buf.AppendByte('\n')
	}
	if rec.Exception != nil {
		buf.AppendString(renderTraceback(rec.Exception, h.colored && h.pretty))
	}

	_, err = h.writer.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// Flush syncs the underlying writer.
func (h *Handler) Flush() error { return h.writer.Sync() }

// Close syncs and, if the writer supports it, closes it.
func (h *Handler) Close() error {
	if err := h.writer.Sync(); err != nil {
		return err
	}
	if c, ok := h.writer.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func endsWithNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}
