package loguru

import (
	"bytes"
	"runtime"
	"strconv"
	"strings"
)

// callSite holds everything the Record's call-site fields (spec.md §3:
// name, file.{name,path}, function, line, module) need, captured in one
// runtime.Caller lookup.
type callSite struct {
	pkgPath  string // Python's frame.f_globals['__name__'] analogue
	fileName string
	filePath string
	function string
	line     int
	module   string // filename without extension, Python's splitext(file)[0]
	ok       bool
}

// captureCallSite captures the caller's site at the given skip depth.
// skip follows runtime.Caller conventions: 0 is captureCallSite itself.
func captureCallSite(skip int) callSite {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return callSite{}
	}

	fileName := file
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		fileName = file[idx+1:]
	}

	module := fileName
	if idx := strings.LastIndex(module, "."); idx >= 0 {
		module = module[:idx]
	}

	pkgPath, function := "", ""
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkgPath, function = splitFuncName(fn.Name())
	}

	return callSite{
		pkgPath:  pkgPath,
		fileName: fileName,
		filePath: file,
		function: function,
		line:     line,
		module:   module,
		ok:       true,
	}
}

// splitFuncName splits a runtime.Func.Name() result such as
// "github.com/coreglow/loguru.(*Logger).log" into its import path
// ("github.com/coreglow/loguru") and bare function/method name ("log").
func splitFuncName(full string) (pkgPath, function string) {
	slash := strings.LastIndex(full, "/")
	rest := full
	prefix := ""
	if slash >= 0 {
		prefix = full[:slash+1]
		rest = full[slash+1:]
	}
	dot := strings.Index(rest, ".")
	if dot < 0 {
		return prefix + rest, rest
	}
	pkgPath = prefix + rest[:dot]
	function = rest[dot+1:]
	// Method values are reported as "(*Type).Method" or "Type.Method";
	// keep only the method name, matching loguru's bare function name.
	if idx := strings.LastIndex(function, "."); idx >= 0 {
		function = function[idx+1:]
	}
	function = strings.TrimSuffix(function, "-fm")
	return pkgPath, function
}

// goroutineID parses the current goroutine's id out of the runtime's
// debug header. This is a best-effort value (the runtime makes no API
// guarantee about the format), used only to populate Record.Thread.ID
// the way loguru populates its thread.id from threading.current_thread().
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if end := bytes.IndexByte(b, ' '); end >= 0 {
		b = b[:end]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
