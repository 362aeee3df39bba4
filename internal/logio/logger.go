// Package logio provides the leveled line logger used by the intcode command,
// and an io.Writer that forwards lines to a printf-style function.
package logio

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/logrusorgru/aurora/v4"
)

// Logger writes "LEVEL: message" lines to Output; it is safe for use from
// multiple goroutines.
type Logger struct {
	Output io.Writer

	// Color enables ANSI coloring of level prefixes.
	Color bool

	mu       sync.Mutex
	buf      bytes.Buffer
	exitCode int
}

var levelColors = map[string]aurora.Color{
	"ERROR": aurora.RedFg | aurora.BrightFg | aurora.BoldFm,
	"WARN":  aurora.YellowFg | aurora.BrightFg,
	"TRACE": aurora.BlackFg | aurora.BrightFg,
}

// ExitCode returns a code to pass to os.Exit: 1 if Errorf was called, 2 if
// writing to Output failed, 0 otherwise.
func (log *Logger) ExitCode() int {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.exitCode
}

// Leveledf returns a printf-style function that logs at the given level.
func (log *Logger) Leveledf(level string) func(mess string, args ...interface{}) {
	return func(mess string, args ...interface{}) { log.Printf(level, mess, args...) }
}

// ErrorIf logs any non-nil error through Errorf; %+v is used so that
// recovered panics include their stack.
func (log *Logger) ErrorIf(err error) {
	if err != nil {
		log.Errorf("%+v", err)
	}
}

// Errorf logs at ERROR level and marks the exit code non-zero.
func (log *Logger) Errorf(mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	if log.exitCode == 0 {
		log.exitCode = 1
	}
	log.printf("ERROR", mess, args...)
}

// Printf logs one line at the given level; an empty level omits the prefix.
func (log *Logger) Printf(level, mess string, args ...interface{}) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.printf(level, mess, args...)
}

func (log *Logger) printf(level, mess string, args ...interface{}) {
	if level != "" {
		if color, ok := levelColors[level]; ok && log.Color {
			log.buf.WriteString(aurora.Colorize(level, color).String())
		} else {
			log.buf.WriteString(level)
		}
		log.buf.WriteString(": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&log.buf, mess, args...)
	} else {
		log.buf.WriteString(mess)
	}
	if b := log.buf.Bytes(); len(b) > 0 && b[len(b)-1] != '\n' {
		log.buf.WriteByte('\n')
	}
	if _, err := log.buf.WriteTo(log.Output); err != nil {
		log.buf.Reset()
		log.exitCode = 2
	}
}
