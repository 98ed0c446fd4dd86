package loguru

import "fmt"

// Level is a named severity with a numeric priority in [0, 100].
// Levels are process-global: the set below is registered at package
// init, and AddLevel registers further levels afterwards.
type Level struct {
	No   int
	Name string
}

// String returns the level's name.
func (l Level) String() string {
	return l.Name
}

// Enabled reports whether l is at or above threshold.
func (l Level) Enabled(threshold Level) bool {
	return l.No >= threshold.No
}

// Predefined levels, mirroring loguru's NOTSET/TRACE/DEBUG/INFO/SUCCESS/
// WARNING/ERROR/CRITICAL priorities. Named with a Level suffix so they
// don't collide with the package-level Trace/Debug/Info/... convenience
// functions in loguru.go and the identically-named Logger methods in
// logger.go.
var (
	NotSetLevel   = Level{No: 0, Name: "NOTSET"}
	TraceLevel    = Level{No: 5, Name: "TRACE"}
	DebugLevel    = Level{No: 10, Name: "DEBUG"}
	InfoLevel     = Level{No: 20, Name: "INFO"}
	SuccessLevel  = Level{No: 25, Name: "SUCCESS"}
	WarningLevel  = Level{No: 30, Name: "WARNING"}
	ErrorLevel    = Level{No: 40, Name: "ERROR"}
	CriticalLevel = Level{No: 50, Name: "CRITICAL"}
)

// levelRegistry maps a level name to its Level and style hint. Filled at
// init time and extended by AddLevel; it has no lock of its own.
var levelRegistry = map[string]registeredLevel{}

type registeredLevel struct {
	level Level
	style string // markup tag sequence resolved by the format compiler
}

func registerLevel(l Level, style string) {
	levelRegistry[l.Name] = registeredLevel{level: l, style: style}
}

func init() {
	registerLevel(NotSetLevel, "")
	registerLevel(TraceLevel, "<cyan><bold>")
	registerLevel(DebugLevel, "<blue><bold>")
	registerLevel(InfoLevel, "<bold>")
	registerLevel(SuccessLevel, "<green><bold>")
	registerLevel(WarningLevel, "<yellow><bold>")
	registerLevel(ErrorLevel, "<red><bold>")
	registerLevel(CriticalLevel, "<red><bold><bg-white>")
}

// AddLevel registers a new severity level with the given priority and
// markup style (e.g. "<magenta><bold>"), mirroring loguru's
// logger.level(name, no=..., color=...). Safe to call before any Logger
// starts emitting; handlers built afterward pick the level up through
// their lazy per-level format compilation.
func AddLevel(name string, no int, style string) Level {
	l := Level{No: no, Name: name}
	registerLevel(l, style)
	return l
}

// ParseLevel converts a level name (any case) to a Level. It returns a
// ConfigError when the name is unknown.
func ParseLevel(name string) (Level, error) {
	for _, rl := range levelRegistry {
		if equalFold(rl.level.Name, name) {
			return rl.level, nil
		}
	}
	return Level{}, &ConfigError{Op: "ParseLevel", Err: fmt.Errorf("unknown level name: %q", name)}
}

// levelStyle returns the markup style hint registered for lvl.
func levelStyle(lvl Level) string {
	if rl, ok := levelRegistry[lvl.Name]; ok {
		return rl.style
	}
	return ""
}

// registeredLevels returns every level currently registered, used by the
// format compiler to precompile one format per level (spec invariant:
// a handler's compiled format set has one entry per registered level).
func registeredLevels() []Level {
	levels := make([]Level, 0, len(levelRegistry))
	for _, rl := range levelRegistry {
		levels = append(levels, rl.level)
	}
	return levels
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
