// Package diagcli wires pkg/diag to a real terminal: it decides whether
// ANSI color is appropriate for the process's stdout/stderr, the way the
// driver's own color/formatting decisions are made at the CLI boundary
// rather than inside the library packages.
package diagcli

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/xplshn/pascbe/pkg/diag"
)

// NewStderrSink builds a diag.Sink writing to stderr with color enabled
// only when stderr is a real terminal. Two independent checks are used
// (x/term and go-isatty) because either alone misses some environments
// (e.g. a pty wrapped by a non-standard allocator).
func NewStderrSink() *diag.Sink {
	s := diag.NewSink(os.Stderr)
	s.Color = IsColorTerminal(os.Stderr)
	return s
}

// IsColorTerminal reports whether f looks like an interactive terminal
// that supports ANSI color.
func IsColorTerminal(f *os.File) bool {
	fd := f.Fd()
	if term.IsTerminal(int(fd)) {
		return true
	}
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
