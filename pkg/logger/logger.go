package logger

import (
	"io"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a standard logger with a consistent prefix.
func New(prefix string) *log.Logger {
	return NewTo(os.Stdout, prefix)
}

// NewTo is New with an explicit destination.
func NewTo(w io.Writer, prefix string) *log.Logger {
	return log.New(w, prefix, log.LstdFlags|log.LUTC)
}

// NewLogr wraps a standard logger for packages that log through logr.
// Verbosity is not per logger; see SetVerbosity.
func NewLogr(l *log.Logger) logr.Logger {
	return stdr.New(l)
}

// SetVerbosity sets the process-wide level above which V(n).Info calls of
// every logger from NewLogr are dropped, and returns the previous level.
// Call it once from main.
func SetVerbosity(v int) int {
	return stdr.SetVerbosity(v)
}
