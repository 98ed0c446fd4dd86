package loguru

import "time"

// Record is the immutable value built per emission and handed, unchanged,
// to every registered handler (spec.md §3, §4.1).
type Record struct {
	Time      time.Time
	Elapsed   time.Duration
	Level     Level
	Message   string
	Name      string
	File      FileInfo
	Function  string
	Line      int
	Module    string
	Thread    ThreadInfo
	Process   ProcessInfo
	Exception *CapturedException
}

// FileInfo identifies the call-site source file. Its bare (String) form
// is the file's base name; Path carries the full path, mirroring
// loguru's FileRecattr (a str subclass exposing .name/.path).
type FileInfo struct {
	Name string
	Path string
}

func (f FileInfo) String() string { return f.Name }

// ThreadInfo identifies the goroutine that emitted the record. Go has no
// stable, user-visible thread identifier; ID is the best-effort goroutine
// id parsed from the runtime's debug output (see caller.go) and Name
// defaults to "goroutine-<id>".
type ThreadInfo struct {
	ID   int64
	Name string
}

func (t ThreadInfo) String() string { return t.Name }

// ProcessInfo identifies the OS process that emitted the record.
type ProcessInfo struct {
	ID   int
	Name string
}

func (p ProcessInfo) String() string { return p.Name }
