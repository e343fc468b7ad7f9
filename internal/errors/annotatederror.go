// Package errors wraps the standard library errors package with errors that carry [slog.Attr] annotations and the
// source location where they were created.
//
// Use [Wrap] at the boundaries of the application (handlers, main) and log the result with [SlogError] so that the
// annotations and the source location end up in the structured log line.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Re-exported from the standard library so that importing this package is enough.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

type annotatedError struct {
	msg   string
	err   error
	attrs []slog.Attr
	pc    uintptr
}

func (e *annotatedError) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.err
}

// NewSentinel creates an error meant to be compared with [Is]. It doesn't capture a stack location because sentinels
// are usually declared as package level variables.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with msg and attrs. The caller's source location is recorded and reported by [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	// Skip runtime.Callers and Wrap.
	runtime.Callers(2, pcs[:]) //nolint:mnd // see above
	return &annotatedError{
		msg:   msg,
		err:   err,
		attrs: attrs,
		pc:    pcs[0],
	}
}

// DecoratePanic converts the value returned by recover into an error pointing to the line that panicked.
// It returns nil when excp is nil.
func DecoratePanic(excp any) error {
	if excp == nil {
		return nil
	}
	return &annotatedError{
		msg:   fmt.Sprintf("panic: %v", excp),
		err:   nil,
		attrs: nil,
		pc:    panicSite(),
	}
}

// panicSite finds the first frame below runtime.gopanic, which is where the panic originated.
func panicSite() uintptr {
	const maxDepth = 32
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(1, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var (
		seenPanic bool
		fallback  uintptr
	)
	for {
		frame, more := frames.Next()
		switch {
		case frame.Function == "runtime.gopanic":
			seenPanic = true
		case seenPanic && !strings.HasPrefix(frame.Function, "runtime."):
			return frame.PC
		case fallback == 0 && !strings.HasSuffix(frame.Function, "errors.panicSite") &&
			!strings.HasSuffix(frame.Function, "errors.DecoratePanic"):
			fallback = frame.PC
		}
		if !more {
			return fallback
		}
	}
}

// SlogError converts err into a [slog.Attr] group named "error" containing the message, the annotations of every
// wrapped error and the source location of the innermost annotated error.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}

	var (
		annotations []any
		source      string
	)
	for current := err; current != nil; current = errors.Unwrap(current) {
		var annotated *annotatedError
		if !errors.As(current, &annotated) {
			break
		}
		for _, attr := range annotated.attrs {
			annotations = append(annotations, attr)
		}
		if loc := sourceLocation(annotated.pc); loc != "" {
			source = loc
		}
		current = annotated
	}

	groupAttrs := []any{slog.String("message", err.Error())}
	if len(annotations) > 0 {
		groupAttrs = append(groupAttrs, slog.Group("annotations", annotations...))
	}
	if source != "" {
		groupAttrs = append(groupAttrs, slog.String("source", source))
	}
	return slog.Group("error", groupAttrs...)
}

func sourceLocation(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", frame.File, frame.Line)
}
