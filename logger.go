package loguru

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Logger is the core logging engine: a registry of sinks, each wrapped
// in its own Handler, fed by the per-level logging methods (spec.md
// §4). It is safe for concurrent use. Grounded on the Logger class in
// original_source/loguru/__init__.py (log_to/clear/config/
// make_log_function).
type Logger struct {
	startTime time.Time

	mu       sync.RWMutex
	handlers map[int]*handlerEntry
	nextID   int
}

type handlerEntry struct {
	handler *Handler
	closer  io.Closer
}

// NewLogger builds a Logger with no sinks attached. Use LogTo to add
// one, or call Default() for a ready-to-use logger writing to stderr.
func NewLogger() *Logger {
	return &Logger{
		startTime: time.Now(),
		handlers:  make(map[int]*handlerEntry),
	}
}

// logToConfig collects LogTo's options (spec.md §4: level, format,
// filter, coloring, and exception rendering are all per-sink).
type logToConfig struct {
	level   Level
	format  string
	filter  Filter
	colored *bool
	pretty  bool
	fsOpts  []FileSinkOption
	encoder Encoder
}

// LogToOption configures a single call to Logger.LogTo.
type LogToOption func(*logToConfig)

// WithLevel sets the minimum level this sink accepts. DebugLevel is the
// default, matching loguru's log_to default.
func WithLevel(lvl Level) LogToOption { return func(c *logToConfig) { c.level = lvl } }

// WithFormat overrides DefaultFormat for this sink.
func WithFormat(template string) LogToOption { return func(c *logToConfig) { c.format = template } }

// WithFilter attaches a Filter to this sink.
func WithFilter(f Filter) LogToOption { return func(c *logToConfig) { c.filter = f } }

// WithColored forces colorized markup rendering on or off for this sink,
// overriding the automatic isatty-based detection used for io.Writer
// sinks.
func WithColored(colored bool) LogToOption {
	return func(c *logToConfig) { c.colored = &colored }
}

// WithPrettyExceptions toggles colorized caught-point highlighting in
// rendered tracebacks (spec.md §4.4); defaults to true, mirroring
// log_to's better_exceptions=True default.
func WithPrettyExceptions(pretty bool) LogToOption {
	return func(c *logToConfig) { c.pretty = pretty }
}

// WithSinkEncoder replaces the format-template pipeline with a
// structured Encoder (JSONEncoder, LogfmtEncoder, or a custom one) for
// this sink, the way the old JSONHandler/LogfmtHandler types once did
// as separate Handler subtypes.
func WithSinkEncoder(enc Encoder) LogToOption {
	return func(c *logToConfig) { c.encoder = enc }
}

// WithFileSinkOptions passes FileSinkOption values through to the
// FileSink constructed when the LogTo sink argument is a path string.
func WithFileSinkOptions(opts ...FileSinkOption) LogToOption {
	return func(c *logToConfig) { c.fsOpts = append(c.fsOpts, opts...) }
}

// LogTo attaches a new sink and returns its handler id (for later Clear
// calls). sink may be: a path string (opens a FileSink), a WriteSyncer
// or plain io.Writer (stdout/stderr/a file/a bytes.Buffer/...), or a
// func([]byte) error (a bare write callback). Color defaults to true
// only when the writer is attached to a terminal (spec.md §4.2),
// mirroring log_to's isatty-based colored=None resolution.
func (l *Logger) LogTo(sink interface{}, opts ...LogToOption) (int, error) {
	cfg := &logToConfig{level: DebugLevel, format: DefaultFormat, pretty: true}
	for _, opt := range opts {
		opt(cfg)
	}

	writer, closer, autoColored, err := resolveSink(sink, cfg.fsOpts)
	if err != nil {
		return 0, err
	}
	colored := autoColored
	if cfg.colored != nil {
		colored = *cfg.colored
	}

	h := NewHandler(writer, cfg.format,
		WithHandlerLevel(cfg.level),
		WithHandlerFilter(cfg.filter),
		WithColor(colored, cfg.pretty),
		WithEncoder(cfg.encoder),
	)

	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.handlers[id] = &handlerEntry{handler: h, closer: closer}
	l.mu.Unlock()
	return id, nil
}

func resolveSink(sink interface{}, fsOpts []FileSinkOption) (writer WriteSyncer, closer io.Closer, colored bool, err error) {
	switch s := sink.(type) {
	case string:
		fs, ferr := NewFileSink(s, fsOpts...)
		if ferr != nil {
			return nil, nil, false, ferr
		}
		return fs, fs, false, nil
	case func([]byte) error:
		return funcWriteSyncer(s), nil, false, nil
	case WriteSyncer:
		c, _ := s.(io.Closer)
		return s, c, isTerminalWriter(s), nil
	case io.Writer:
		ws := WrapWriter(s)
		c, _ := s.(io.Closer)
		return ws, c, isTerminalWriter(s), nil
	default:
		return nil, nil, false, &ConfigError{Op: "log_to", Err: fmt.Errorf("cannot log to objects of type %T", sink)}
	}
}

type funcWriteSyncer func([]byte) error

func (f funcWriteSyncer) Write(p []byte) (int, error) {
	if err := f(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (f funcWriteSyncer) Sync() error { return nil }

func isTerminalWriter(w interface{}) bool {
	type fder interface{ Fd() uintptr }
	f, ok := w.(fder)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Clear removes and stops the sink registered under id, returning false
// if no such sink exists.
func (l *Logger) Clear(id int) bool {
	l.mu.Lock()
	he, ok := l.handlers[id]
	if ok {
		delete(l.handlers, id)
	}
	l.mu.Unlock()
	if !ok {
		return false
	}
	if he.closer != nil {
		_ = he.closer.Close()
	}
	return true
}

// ClearAll removes and stops every sink, returning how many there were.
func (l *Logger) ClearAll() int {
	l.mu.Lock()
	handlers := l.handlers
	l.handlers = make(map[int]*handlerEntry)
	l.mu.Unlock()

	for _, he := range handlers {
		if he.closer != nil {
			_ = he.closer.Close()
		}
	}
	return len(handlers)
}

// Catch builds a Catcher bound to this logger. Each call returns an
// independent Catcher, so concurrent callers configuring different
// catch behavior never share mutable state (see catcher.go).
func (l *Logger) Catch(opts ...CatcherOption) *Catcher {
	return NewCatcher(l, opts...)
}

func (l *Logger) snapshotHandlers() []*Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Handler, 0, len(l.handlers))
	for _, he := range l.handlers {
		out = append(out, he.handler)
	}
	return out
}

func renderMessage(format string, args []interface{}) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func processName() string {
	if len(os.Args) == 0 {
		return ""
	}
	return filepath.Base(os.Args[0])
}

func (l *Logger) buildRecord(lvl Level, skip int, format string, args []interface{}) *Record {
	site := captureCallSite(skip)
	now := time.Now()
	gid := goroutineID()
	return &Record{
		Time:     now,
		Elapsed:  now.Sub(l.startTime),
		Level:    lvl,
		Message:  renderMessage(format, args),
		Name:     site.pkgPath,
		File:     FileInfo{Name: site.fileName, Path: site.filePath},
		Function: site.function,
		Line:     site.line,
		Module:   site.module,
		Thread:   ThreadInfo{ID: gid, Name: fmt.Sprintf("goroutine-%d", gid)},
		Process:  ProcessInfo{ID: os.Getpid(), Name: processName()},
	}
}

func (l *Logger) dispatch(rec *Record) error {
	var errs []error
	for _, h := range l.snapshotHandlers() {
		if err := h.Emit(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// callSiteDepth is how many frames separate a public logging method's
// caller from captureCallSite's own runtime.Caller call: user code ->
// {Trace,Debug,...} -> log -> buildRecord -> captureCallSite.
const callSiteDepth = 4

func (l *Logger) log(lvl Level, format string, args []interface{}) error {
	rec := l.buildRecord(lvl, callSiteDepth, format, args)
	return l.dispatch(rec)
}

// Trace logs at TRACE severity.
func (l *Logger) Trace(format string, args ...interface{}) error {
	return l.log(TraceLevel, format, args)
}

// Debug logs at DEBUG severity.
func (l *Logger) Debug(format string, args ...interface{}) error {
	return l.log(DebugLevel, format, args)
}

// Info logs at INFO severity.
func (l *Logger) Info(format string, args ...interface{}) error { return l.log(InfoLevel, format, args) }

// Success logs at SUCCESS severity.
func (l *Logger) Success(format string, args ...interface{}) error {
	return l.log(SuccessLevel, format, args)
}

// Warning logs at WARNING severity.
func (l *Logger) Warning(format string, args ...interface{}) error {
	return l.log(WarningLevel, format, args)
}

// Error logs at ERROR severity.
func (l *Logger) Error(format string, args ...interface{}) error {
	return l.log(ErrorLevel, format, args)
}

// Critical logs at CRITICAL severity.
func (l *Logger) Critical(format string, args ...interface{}) error {
	return l.log(CriticalLevel, format, args)
}

// Exception logs at ERROR severity with err's traceback attached
// (spec.md §4.4). Pass an error produced by TraceError to preserve the
// stack captured at its original fault site; otherwise the traceback
// reflects Exception's own call site.
func (l *Logger) Exception(err error, format string, args ...interface{}) error {
	// Exception calls buildRecord itself rather than going through log,
	// so its caller is one frame closer than callSiteDepth counts. For
	// captureException, skip 2 starts the fallback stack at that caller.
	rec := l.buildRecord(ErrorLevel, callSiteDepth-1, format, args)
	rec.Exception = captureException(err, 2)
	return l.dispatch(rec)
}

// emitCaught is the entry point Catcher uses to log a recovered panic.
// It does not return an error: a panic already escaped ordinary control
// flow, so there is no caller left to hand a dispatch error back to
// (matching the original's emit loop, which never raises either).
func (l *Logger) emitCaught(lvl Level, message string, ce *CapturedException) {
	rec := l.buildRecord(lvl, emitCaughtDepth, message, nil)
	rec.Exception = ce
	_ = l.dispatch(rec)
}

// emitCaughtDepth counts captureCallSite -> buildRecord ->
// Logger.emitCaught -> Catcher.recoverAndLog, so a caught record's
// call-site fields (name, file, function, line) describe recoverAndLog
// itself, not the code that panicked. The guarded function's name
// reaches the output through the catch message's {function} placeholder.
const emitCaughtDepth = 3

// Flush flushes every attached sink.
func (l *Logger) Flush() error {
	var errs []error
	for _, h := range l.snapshotHandlers() {
		if err := h.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops every attached sink, same as ClearAll but surfacing
// errors instead of discarding them.
func (l *Logger) Close() error {
	l.mu.Lock()
	handlers := l.handlers
	l.handlers = make(map[int]*handlerEntry)
	l.mu.Unlock()

	var errs []error
	for _, he := range handlers {
		if he.closer != nil {
			if err := he.closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
