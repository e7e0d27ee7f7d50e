package compiler

import (
	"fmt"
	"io"
	"os"
)

const logPrefix = "[symtrie] "

// Logger reports what a compilation produced: pattern set and transition
// table counts, one line per state, and the files written. It is silent
// unless verbose output was requested.
type Logger struct {
	enabled bool
	out     io.Writer
}

// NewLogger returns a Logger reporting to stderr.
func NewLogger(enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		out:     os.Stderr,
	}
}

// SetOutput redirects the report, mostly for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
}

// Section starts a group of counts, such as "Pattern Set".
func (l *Logger) Section(name string) {
	if l.enabled {
		fmt.Fprintf(l.out, "\n%s=== %s ===\n", logPrefix, name)
	}
}

// Stat reports one count. Labels are padded so the counts line up.
func (l *Logger) Stat(label string, count int) {
	if l.enabled {
		fmt.Fprintf(l.out, "%s%-18s %d\n", logPrefix, label+":", count)
	}
}

// State describes one compiled state by its generated constant.
func (l *Logger) State(ident, prefix string, rules int, fallback string) {
	if l.enabled {
		fmt.Fprintf(l.out, "%s  %s prefix=%q rules=%d fallback=%s\n", logPrefix, ident, prefix, rules, fallback)
	}
}

// Wrote records a generated file.
func (l *Logger) Wrote(path string) {
	if l.enabled {
		fmt.Fprintf(l.out, "%sWrote %s\n", logPrefix, path)
	}
}

// Enabled reports whether anything is written. The per-state listing is
// skipped entirely when it is not.
func (l *Logger) Enabled() bool {
	return l.enabled
}
