package log

import (
	"fmt"
	"io"
	"strings"
)

type Logger interface {
	Log(format string, a ...interface{})
}

var (
	_ Logger = &logger{}
	_ Logger = &nopLogger{}
	_ Logger = &indentLogger{}
)

type logger struct {
	w io.Writer
}

func NewLogger(w io.Writer) (*logger, error) {
	if w == nil {
		return nil, fmt.Errorf("w is nil; NewLogger() needs a writer")
	}
	return &logger{
		w: w,
	}, nil
}

func (l *logger) Log(format string, a ...interface{}) {
	fmt.Fprintf(l.w, format+"\n", a...)
}

type nopLogger struct {
}

func NewNopLogger() *nopLogger {
	return &nopLogger{}
}

func (l *nopLogger) Log(format string, a ...interface{}) {
}

// indentLogger prefixes every line of a message, including the lines of a
// multi-line message, with a fixed indent.
type indentLogger struct {
	base   Logger
	indent string
}

// Indent returns a logger that writes through base with each line shifted
// right by depth levels of two spaces.
func Indent(base Logger, depth int) Logger {
	if depth <= 0 {
		return base
	}
	return &indentLogger{
		base:   base,
		indent: strings.Repeat("  ", depth),
	}
}

func (l *indentLogger) Log(format string, a ...interface{}) {
	msg := fmt.Sprintf(format, a...)
	lines := strings.Split(strings.TrimRight(msg, "\n"), "\n")
	for i, line := range lines {
		lines[i] = l.indent + line
	}
	l.base.Log("%s", strings.Join(lines, "\n"))
}
