package intcode

import (
	"context"

	"github.com/jcorbin/intcode/internal/mem"
)

// Signal classifies the outcome of a single step.
type Signal uint8

// Step signals.
const (
	// Continue means that an instruction executed without any host-visible effect.
	Continue Signal = iota

	// Output means that the instruction emitted StepResult.Value.
	Output

	// NeedsInput means that an input instruction found nothing to read; the
	// instruction pointer stays put until the host supplies a value.
	NeedsInput

	// Halted means that the session executed halt; it must not be stepped again.
	Halted
)

func (sig Signal) String() string {
	switch sig {
	case Continue:
		return "continue"
	case Output:
		return "output"
	case NeedsInput:
		return "needs input"
	case Halted:
		return "halted"
	}
	return "invalid signal"
}

// StepResult is the outcome of a single step; Value is only meaningful for Output.
type StepResult struct {
	Signal Signal
	Value  int64
}

// Session is one independent VM instance: its own memory image, instruction
// pointer, and relative base. A session must only be driven by one
// goroutine at a time; sessions share nothing with each other.
type Session struct {
	logging
	name string

	mem  mem.Words
	ip   uint
	base int64

	// queue holds input values provided ahead of need
	queue []int64

	// pending holds a value supplied in response to NeedsInput
	pending    int64
	hasPending bool

	awaiting bool
	halted   bool
	err      error

	steps uint64
}

// Load creates a new session from a copy of prog, with at least extraPadding
// zero words allocated past the end of the program. Memory still grows on
// demand beyond that, up to any limit set with WithMemLimit.
func Load(prog Program, extraPadding int, opts ...SessionOption) (*Session, error) {
	var s Session
	SessionOptions(defaultOptions, SessionOptions(opts...)).apply(&s)
	if err := s.mem.Stor(0, prog...); err != nil {
		return nil, AddressError{Addr: int64(len(prog)), Op: "load", Err: err}
	}
	if extraPadding < 0 {
		extraPadding = 0
	}
	if err := s.mem.Grow(uint(len(prog) + extraPadding)); err != nil {
		return nil, AddressError{Addr: int64(len(prog) + extraPadding), Op: "load", Err: err}
	}
	s.logf("#", "load %v words +%v padding", len(prog), extraPadding)
	return &s, nil
}

// Name returns the name given by WithName.
func (s *Session) Name() string { return s.name }

// IP returns the current instruction pointer.
func (s *Session) IP() uint { return s.ip }

// RelativeBase returns the current relative base register.
func (s *Session) RelativeBase() int64 { return s.base }

// Halted returns true once the session has executed halt.
func (s *Session) Halted() bool { return s.halted }

// AwaitingInput returns true if the last step returned NeedsInput and no
// input has been supplied since.
func (s *Session) AwaitingInput() bool { return s.awaiting && !s.hasPending && len(s.queue) == 0 }

// Err returns any fatal error that faulted the session.
func (s *Session) Err() error { return s.err }

// Steps returns the number of instructions executed so far.
func (s *Session) Steps() uint64 { return s.steps }

// Peek returns the memory value at addr.
func (s *Session) Peek(addr uint) (int64, error) {
	val, err := s.mem.Load(addr)
	if err != nil {
		return 0, AddressError{IP: s.ip, Addr: int64(addr), Op: "peek", Err: err}
	}
	return val, nil
}

// Poke stores values into memory starting at addr.
func (s *Session) Poke(addr uint, values ...int64) error {
	if err := s.mem.Stor(addr, values...); err != nil {
		return AddressError{IP: s.ip, Addr: int64(addr), Op: "poke", Err: err}
	}
	return nil
}

// Image returns a dense copy of memory from address 0 up to the end of the
// last allocated page. It allocates a word for every address in that range,
// so sessions that store far out should be inspected with Dump or
// MarshalBinary instead.
func (s *Session) Image() []int64 {
	buf := make([]int64, s.mem.Size())
	_ = s.mem.LoadInto(0, buf)
	return buf
}

// Queue provides input values ahead of need; they are consumed in order by
// input instructions before NeedsInput is ever signaled.
func (s *Session) Queue(values ...int64) {
	s.queue = append(s.queue, values...)
}

// SupplyInput provides the value for an input instruction that returned
// NeedsInput. It is a CallerMisuseError to supply input at any other time.
func (s *Session) SupplyInput(value int64) error {
	switch {
	case s.err != nil:
		return s.err
	case s.halted:
		return errSupplyHalted
	case !s.awaiting:
		return errSupplyUnasked
	case s.hasPending:
		return errSupplyTwice
	}
	s.pending, s.hasPending = value, true
	s.logf("<", "supply %v", value)
	return nil
}

// Step executes exactly one instruction.
//
// Fatal program errors (DecodeError, AddressError, ModeError) fault the
// session, and are returned again by every later step. Stepping a halted
// session, or stepping again after NeedsInput without supplying input, is a
// CallerMisuseError.
func (s *Session) Step() (StepResult, error) {
	if s.err != nil {
		return StepResult{}, s.err
	}
	if s.halted {
		return StepResult{}, errHalted
	}
	if s.AwaitingInput() {
		return StepResult{}, errStepNoInput
	}

	res, err := s.exec()
	if err != nil {
		s.err = err
		s.logf("#", "fault: %v", err)
		return res, err
	}

	switch res.Signal {
	case NeedsInput:
		s.awaiting = true
		s.logf("#", "suspend @%v needs input", s.ip)
	case Halted:
		s.halted = true
		s.logf("#", "halt @%v after %v steps", s.ip, s.steps)
	}
	return res, nil
}

// Drive steps the session until it produces a result other than Continue,
// or until ctx is done.
func (s *Session) Drive(ctx context.Context) (StepResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return StepResult{}, err
		}
		if res, err := s.Step(); err != nil || res.Signal != Continue {
			return res, err
		}
	}
}

// RunUntilInput drives the session until it needs input or halts,
// collecting any output produced along the way. The returned result is
// either NeedsInput or Halted when err is nil.
func (s *Session) RunUntilInput(ctx context.Context) (outputs []int64, res StepResult, err error) {
	for {
		res, err = s.Drive(ctx)
		if err != nil || res.Signal != Output {
			return outputs, res, err
		}
		outputs = append(outputs, res.Value)
	}
}

// RunUntilOutputOrHalt drives the session until it outputs a value,
// returning (value, true), or halts, returning (0, false).
// Input must have been queued ahead of need: running out of input is a
// StarvedInputError.
func (s *Session) RunUntilOutputOrHalt(ctx context.Context) (int64, bool, error) {
	res, err := s.Drive(ctx)
	if err != nil {
		return 0, false, err
	}
	switch res.Signal {
	case Output:
		return res.Value, true, nil
	case NeedsInput:
		return 0, false, StarvedInputError{IP: s.ip}
	default:
		return 0, false, nil
	}
}

// Run queues inputs and runs the session until it halts, returning all output.
// Like RunUntilOutputOrHalt, running out of input is a StarvedInputError.
func (s *Session) Run(ctx context.Context, inputs ...int64) (outputs []int64, err error) {
	s.Queue(inputs...)
	for {
		val, ok, err := s.RunUntilOutputOrHalt(ctx)
		if err != nil || !ok {
			return outputs, err
		}
		outputs = append(outputs, val)
	}
}
