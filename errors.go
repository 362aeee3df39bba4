package intcode

import "fmt"

// DecodeError indicates that the word at IP is not a valid instruction.
type DecodeError struct {
	IP     uint
	Word   int64
	Reason string
}

func (err DecodeError) Error() string {
	return fmt.Sprintf("invalid instruction %v @%v: %v", err.Word, err.IP, err.Reason)
}

// AddressError indicates that an operand resolved to an address outside of
// memory: either negative, too large for a uint, or past a configured memory
// limit (in which case Err is the underlying mem.LimitError).
type AddressError struct {
	IP   uint
	Addr int64
	Op   string
	Err  error
}

func (err AddressError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("invalid %v address %v @%v: %v", err.Op, err.Addr, err.IP, err.Err)
	}
	return fmt.Sprintf("invalid %v address %v @%v", err.Op, err.Addr, err.IP)
}

func (err AddressError) Unwrap() error { return err.Err }

// ModeError indicates an immediate mode destination parameter.
type ModeError struct {
	IP    uint
	Param int
	Mode  Mode
}

func (err ModeError) Error() string {
	return fmt.Sprintf("invalid %v mode for destination parameter %v @%v", err.Mode, err.Param, err.IP)
}

// StarvedInputError is returned by the strict drivers (Run and
// RunUntilOutputOrHalt) when the program asks for input that was not queued
// ahead of time.
type StarvedInputError struct {
	IP uint
}

func (err StarvedInputError) Error() string {
	return fmt.Sprintf("input starved @%v", err.IP)
}

// CallerMisuseError indicates that a host broke the session contract, e.g.
// by stepping a halted session.
type CallerMisuseError struct {
	Op     string
	Reason string
}

func (err CallerMisuseError) Error() string {
	return fmt.Sprintf("invalid %v: %v", err.Op, err.Reason)
}

var (
	errHalted        = CallerMisuseError{"step", "session already halted"}
	errStepNoInput   = CallerMisuseError{"step", "no input supplied after NeedsInput"}
	errSupplyHalted  = CallerMisuseError{"input supply", "session already halted"}
	errSupplyUnasked = CallerMisuseError{"input supply", "session is not waiting for input"}
	errSupplyTwice   = CallerMisuseError{"input supply", "input already supplied"}
)
