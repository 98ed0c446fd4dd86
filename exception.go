package loguru

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/fatih/color"
)

// TracebackFrame is one node in the singly-linked traceback chain
// (spec.md §3). The chain is ordered outermost-ancestor-first,
// innermost/raise-site-last, matching how a normal stack trace prints
// ("most recent call last"). Exactly one frame carries CaughtPoint.
type TracebackFrame struct {
	Function    string
	File        string
	Line        int
	CaughtPoint bool
	Next        *TracebackFrame
}

// CapturedException is the (type, value, traceback) triple of spec.md §3.
type CapturedException struct {
	TypeName  string
	Value     error
	Traceback *TracebackFrame
}

// loguruPkgDir is this package's own source directory, used to skip
// logger-internal frames while walking the stack (spec.md §4.4 step 1:
// "Frames inside the logger's own files are skipped").
var loguruPkgDir = func() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}()

func isInternalFrame(file, function string) bool {
	if filepath.Dir(file) == loguruPkgDir {
		return true
	}
	return strings.HasPrefix(function, "runtime.")
}

// captureFrames walks the current goroutine's stack starting above skip
// frames, skipping logger-internal and runtime frames, and returns them
// ordered outermost-first. maxDepth bounds how deep the walk goes.
func captureFrames(skip int, maxDepth int) []TracebackFrame {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	var collected []TracebackFrame
	for {
		frame, more := frames.Next()
		if !isInternalFrame(frame.File, frame.Function) {
			_, function := splitFuncName(frame.Function)
			collected = append(collected, TracebackFrame{
				Function: function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}

	// runtime.Callers yields innermost-first; reverse to outermost-first.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// linkFrames builds the Next chain from an outermost-first slice and
// marks the frame at caughtIndex (clamped into range) as the caught
// point, per spec.md §3's invariant that at most one such marker exists.
func linkFrames(frames []TracebackFrame, caughtIndex int) *TracebackFrame {
	if len(frames) == 0 {
		return nil
	}
	if caughtIndex < 0 {
		caughtIndex = 0
	}
	if caughtIndex > len(frames)-1 {
		caughtIndex = len(frames) - 1
	}
	frames[caughtIndex].CaughtPoint = true

	head := &frames[0]
	for i := 0; i < len(frames)-1; i++ {
		frames[i].Next = &frames[i+1]
	}
	return head
}

func errorTypeName(err error) string {
	if err == nil {
		return ""
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "error"
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// tracedError is produced by TraceError and carries the stack captured
// at the point an error first occurred, so a later Logger.Exception call
// can render the original fault site instead of just its own call site —
// the Go analogue of CPython retaining the full traceback object inside
// the exception as it propagates up through callers.
type tracedError struct {
	err    error
	frames []TracebackFrame // outermost-first, captured at TraceError time
}

func (t *tracedError) Error() string { return t.err.Error() }
func (t *tracedError) Unwrap() error { return t.err }

// TraceError wraps err with the call stack at the point it is invoked.
// Call it where an error is first produced or first detected; pass the
// result along through return values as usual. A later
// Logger.Exception(msg, err) unwraps it to recover the original fault
// site for the caught-point marker.
//
// Named TraceError, not Trace, so it doesn't collide with the
// package-level Trace convenience function (TRACE-severity logging) or
// Logger.Trace.
func TraceError(err error) error {
	if err == nil {
		return nil
	}
	frames := captureFrames(2, 64)
	return &tracedError{err: err, frames: frames}
}

func asTracedError(err error) (*tracedError, bool) {
	for err != nil {
		if te, ok := err.(*tracedError); ok {
			return te, true
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// captureException builds a CapturedException for Logger.Exception
// (spec.md §4.4, direct-call mode): if err was produced via TraceError, its
// captured frames are reused and the fault site (the frame captured
// deepest, i.e. last in outermost-first order) is marked as the caught
// point — "mark the first original (non-prefix) node". Otherwise this
// falls back to the current call stack with the immediate caller marked,
// which is the best a non-traced error can offer.
func captureException(err error, skip int) *CapturedException {
	if err == nil {
		return nil
	}

	if te, ok := asTracedError(err); ok && len(te.frames) > 0 {
		frames := make([]TracebackFrame, len(te.frames))
		copy(frames, te.frames)
		return &CapturedException{
			TypeName:  errorTypeName(te.err),
			Value:     te.err,
			Traceback: linkFrames(frames, len(frames)-1),
		}
	}

	frames := captureFrames(skip+1, 64)
	return &CapturedException{
		TypeName:  errorTypeName(err),
		Value:     err,
		Traceback: linkFrames(frames, len(frames)-1),
	}
}

// captureRecoveredPanic builds a CapturedException from a value recovered
// inside a deferred func (spec.md §4.4, catcher mode). Because Go runs
// deferred functions on the still-unwound goroutine stack, a single
// runtime.Callers call from inside the recover already yields both the
// frames where the panic propagated through and their ancestor callers —
// loguru needs two separate walks (forward through the live traceback,
// then backward through the calling stack) only because CPython's
// traceback object doesn't expose ancestor frames on its own; here they
// come for free in one list (see SPEC_FULL.md §4).
//
// extraOut shifts the caught-point marker outward by that many frames:
// 0 for scoped use, 1 for decorator use, since the decorator wrapper
// itself sits between the user's function and the logger (spec.md §4.5).
func captureRecoveredPanic(recovered interface{}, skip int, extraOut int) *CapturedException {
	frames := captureFrames(skip+1, 64)

	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%v", recovered)
	}

	caughtIndex := len(frames) - 1 - extraOut
	return &CapturedException{
		TypeName:  panicTypeName(recovered),
		Value:     err,
		Traceback: linkFrames(frames, caughtIndex),
	}
}

func panicTypeName(recovered interface{}) string {
	if err, ok := recovered.(error); ok {
		return errorTypeName(err)
	}
	if recovered == nil {
		return "panic"
	}
	return reflect.TypeOf(recovered).String()
}

// renderTraceback renders a CapturedException the way spec.md §4.4
// requires: the banner replaces the usual "Traceback (most recent call
// last):" with one naming the catch point, and the caught frame's line
// is prefixed with "> " instead of "  ". When colored is true (the
// "pretty" exception formatter path, spec.md §1's opaque renderer), the
// caught-point line is additionally bolded/colored via fatih/color.
func renderTraceback(ce *CapturedException, colored bool) string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last, catch point marked):\n")

	highlight := color.New(color.FgRed, color.Bold)
	highlight.EnableColor()

	for f := ce.Traceback; f != nil; f = f.Next {
		prefix := "  "
		if f.CaughtPoint {
			prefix = "> "
		}
		line := fmt.Sprintf("%sFile %q, line %d, in %s\n", prefix, f.File, f.Line, f.Function)
		if colored && f.CaughtPoint {
			line = highlight.Sprint(line)
		}
		b.WriteString(line)
	}

	b.WriteString(ce.TypeName)
	if ce.Value != nil {
		b.WriteString(": ")
		b.WriteString(ce.Value.Error())
	}
	b.WriteByte('\n')
	return b.String()
}
