package util

import (
	"io"
	"io/ioutil"
	"log"
	"os"
)

// A Logger writes progress messages and error messages to separate
// streams. Progress messages may be silenced.
type Logger struct {
	info *log.Logger
	err  *log.Logger
}

// NewLogger returns a Logger writing progress to standard output and
// errors to standard error. If quiet is true progress messages are dropped.
func NewLogger(quiet bool) *Logger {
	var out io.Writer = os.Stdout
	if quiet {
		out = ioutil.Discard
	}
	return NewLoggerTo(out, os.Stderr)
}

// NewLoggerTo returns a Logger writing to the given streams.
func NewLoggerTo(info, errs io.Writer) *Logger {
	return &Logger{
		info: log.New(info, "", log.LstdFlags),
		err:  log.New(errs, "", log.LstdFlags),
	}
}

// Discard returns a Logger which writes nothing.
func Discard() *Logger {
	return NewLoggerTo(ioutil.Discard, ioutil.Discard)
}

// Printf writes a progress message.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

// Errorf writes an error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.err.Printf(format, args...)
}
