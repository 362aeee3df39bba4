// Package panicerr converts panics and runtime.Goexit calls into errors so
// that a misbehaving host callback cannot take down its caller.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Error is returned by Recover when its function panics or calls
// runtime.Goexit; Value is nil in the latter case.
type Error struct {
	Name  string
	Value interface{}
	Stack []byte
}

func (pe Error) Error() string { return fmt.Sprint(pe) }

// Format supports %+v to append the panic stack.
func (pe Error) Format(f fmt.State, c rune) {
	if pe.Name != "" {
		fmt.Fprintf(f, "%v ", pe.Name)
	}
	if pe.Value == nil {
		fmt.Fprint(f, "called runtime.Goexit")
		return
	}
	fmt.Fprintf(f, "panicked: %v", pe.Value)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\npanic stack: %s", pe.Stack)
	}
}

// Unwrap returns the panic value if it was an error.
func (pe Error) Unwrap() error {
	err, _ := pe.Value.(error)
	return err
}

// Recover runs f in a new goroutine, returning its error, or an Error if it
// panics or exits abnormally.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			pe := Error{Name: name}
			if pe.Value = recover(); pe.Value != nil {
				pe.Stack = debug.Stack()
			}
			// a normal return has already sent, leaving no room
			select {
			case errch <- pe:
			default:
			}
		}()
		errch <- f()
	}()
	return <-errch
}

// Func adapts f for use with errgroup.Group.Go and similar runners.
func Func(name string, f func() error) func() error {
	return func() error { return Recover(name, f) }
}

// IsPanic returns true if err wraps a recovered panic.
func IsPanic(err error) bool {
	var pe Error
	return errors.As(err, &pe) && pe.Value != nil
}

// IsGoexit returns true if err wraps a recovered runtime.Goexit.
func IsGoexit(err error) bool {
	var pe Error
	return errors.As(err, &pe) && pe.Value == nil
}

// Stack returns the panic stack if err wraps a recovered panic.
func Stack(err error) string {
	var pe Error
	if errors.As(err, &pe) {
		return string(pe.Stack)
	}
	return ""
}
