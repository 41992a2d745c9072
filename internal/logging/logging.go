// Package logging provides the small writer-backed trace logger shared by
// mkview, rmr and inroot.
//
// It mirrors the unconditional logf/errf/errnof macros of the original C
// tools: operational trace always goes to the configured writer (normally
// stdout), while error diagnostics always go to stderr and include the
// underlying errno text.
package logging

import (
	"fmt"
	"io"
)

// Logger writes operational trace to Out and error diagnostics to Err.
// Either writer may be nil, in which case output on that stream is dropped.
type Logger struct {
	Out io.Writer
	Err io.Writer
}

// New returns a Logger that writes trace to out and errors to errw.
func New(out, errw io.Writer) *Logger {
	return &Logger{Out: out, Err: errw}
}

// Logf writes a trace line to Out, matching the C `logf` macro.
func (l *Logger) Logf(format string, args ...any) {
	if l == nil || l.Out == nil {
		return
	}

	_, _ = fmt.Fprintf(l.Out, format+"\n", args...)
}

// Errf writes an error line to Err, matching the C `errf` macro.
func (l *Logger) Errf(format string, args ...any) {
	if l == nil || l.Err == nil {
		return
	}

	_, _ = fmt.Fprintf(l.Err, "Error: "+format+"\n", args...)
}

// Errnof writes an error line to Err that includes err's text, matching the
// C `errnof` macro (which appends strerror(errno)).
func (l *Logger) Errnof(err error, format string, args ...any) {
	if l == nil || l.Err == nil {
		return
	}

	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(l.Err, "Error: %s: %s\n", msg, err)
}
