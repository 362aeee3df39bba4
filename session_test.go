package intcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/intcode/internal/logio"
	"github.com/jcorbin/intcode/internal/mem"
)

type sessionTestCases []sessionTestCase

func (sts sessionTestCases) run(t *testing.T) {
	for _, st := range sts {
		t.Run(st.name, st.run)
	}
}

func sessionTest(name string, prog ...int64) (st sessionTestCase) {
	st.name = name
	st.prog = prog
	return st
}

type sessionTestCase struct {
	name    string
	prog    Program
	padding int
	opts    []SessionOption
	setup   []func(t *testing.T, s *Session)
	inputs  []int64
	timeout time.Duration

	wantErr func(t *testing.T, err error)
	expect  []func(t *testing.T, s *Session, out []int64)
}

func (st sessionTestCase) withOptions(opts ...SessionOption) sessionTestCase {
	st.opts = append(st.opts, opts...)
	return st
}

func (st sessionTestCase) withPadding(padding int) sessionTestCase {
	st.padding = padding
	return st
}

func (st sessionTestCase) withInput(values ...int64) sessionTestCase {
	st.inputs = append(st.inputs, values...)
	return st
}

func (st sessionTestCase) withMemAt(addr uint, values ...int64) sessionTestCase {
	st.setup = append(st.setup, func(t *testing.T, s *Session) {
		require.NoError(t, s.Poke(addr, values...), "must poke @%v", addr)
	})
	return st
}

func (st sessionTestCase) withTimeout(timeout time.Duration) sessionTestCase {
	st.timeout = timeout
	return st
}

// expectError asserts that the run failed with an error assignable to
// target, which must be a pointer to an error type, and passes the
// extracted error to any checks.
func (st sessionTestCase) expectError(target interface{}, checks ...func(t *testing.T)) sessionTestCase {
	st.wantErr = func(t *testing.T, err error) {
		if assert.ErrorAs(t, err, target, "expected %T error", target) {
			for _, check := range checks {
				check(t)
			}
		}
	}
	return st
}

func (st sessionTestCase) expectOutput(values ...int64) sessionTestCase {
	st.expect = append(st.expect, func(t *testing.T, s *Session, out []int64) {
		if values == nil {
			values = []int64{}
		}
		if out == nil {
			out = []int64{}
		}
		assert.Equal(t, values, out, "expected output")
	})
	return st
}

func (st sessionTestCase) expectMemAt(addr uint, values ...int64) sessionTestCase {
	st.expect = append(st.expect, func(t *testing.T, s *Session, out []int64) {
		buf := make([]int64, len(values))
		for i := range buf {
			val, err := s.Peek(addr + uint(i))
			require.NoError(t, err, "unexpected peek error")
			buf[i] = val
		}
		assert.Equal(t, values, buf, "expected memory values @%v", addr)
	})
	return st
}

func (st sessionTestCase) expectIP(ip uint) sessionTestCase {
	st.expect = append(st.expect, func(t *testing.T, s *Session, out []int64) {
		assert.Equal(t, ip, s.IP(), "expected instruction pointer")
	})
	return st
}

func (st sessionTestCase) expectBase(base int64) sessionTestCase {
	st.expect = append(st.expect, func(t *testing.T, s *Session, out []int64) {
		assert.Equal(t, base, s.RelativeBase(), "expected relative base")
	})
	return st
}

func (st sessionTestCase) expectHalted() sessionTestCase {
	st.expect = append(st.expect, func(t *testing.T, s *Session, out []int64) {
		assert.True(t, s.Halted(), "expected session to be halted")
	})
	return st
}

func (st sessionTestCase) run(t *testing.T) {
	const defaultTimeout = time.Second
	timeout := st.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var trace strings.Builder
	opts := append([]SessionOption{
		WithName(st.name),
		WithLogf(func(mess string, args ...interface{}) {
			fmt.Fprintf(&trace, mess+"\n", args...)
		}),
	}, st.opts...)

	s, err := Load(st.prog, st.padding, opts...)
	require.NoError(t, err, "unexpected load error")
	defer func() {
		if t.Failed() {
			lw := logio.Writer{Logf: t.Logf}
			defer lw.Close()
			lw.Write([]byte(trace.String()))
			assert.NoError(t, s.Dump(&lw))
		}
	}()
	for _, setup := range st.setup {
		setup(t, s)
	}

	out, err := s.Run(ctx, st.inputs...)
	if st.wantErr != nil {
		st.wantErr(t, err)
	} else {
		require.NoError(t, err, "unexpected run error")
	}

	for _, expect := range st.expect {
		expect(t, s, out)
	}
}

func Test_Session_programs(t *testing.T) {
	// [1,0,0,0,99] with every pair of source parameter modes; a and b
	// literals select, per mode:
	//   a: position 20 -> 7    immediate 3 -> 3   relative 12 -> [22] = 40
	//   b: position 21 -> 100  immediate 5 -> 5   relative 13 -> [23] = 2000
	type operand struct {
		mode  Mode
		lit   int64
		value int64
	}
	aOperands := []operand{{Position, 20, 7}, {Immediate, 3, 3}, {Relative, 12, 40}}
	bOperands := []operand{{Position, 21, 100}, {Immediate, 5, 5}, {Relative, 13, 2000}}
	var modeMatrix sessionTestCases
	for _, a := range aOperands {
		for _, b := range bOperands {
			word := Instruction{Op: OpAdd, Modes: [3]Mode{a.mode, b.mode, Position}}.Word()
			prog := make(Program, 24)
			copy(prog, []int64{
				109, 10, // arb 10
				word, a.lit, b.lit, 30, // add a, b, [30]
				4, 30, // out [30]
				99, // halt
			})
			copy(prog[20:], []int64{7, 100, 40, 2000})
			name := fmt.Sprintf("add %v %v", a.mode, b.mode)
			modeMatrix = append(modeMatrix, sessionTest(name, prog...).
				expectOutput(a.value+b.value).
				expectMemAt(30, a.value+b.value).
				expectBase(10))
		}
	}
	t.Run("mode matrix", modeMatrix.run)

	sessionTestCases{
		sessionTest("add in place", 1, 0, 0, 0, 99).
			expectMemAt(0, 2, 0, 0, 0, 99).
			expectIP(4).
			expectHalted(),

		sessionTest("mul in place", 2, 4, 4, 5, 99, 0).
			expectMemAt(0, 2, 4, 4, 5, 99, 9801),

		sessionTest("mul immediate", 1002, 4, 3, 4, 33).
			expectMemAt(4, 99),

		sessionTest("negative immediate", 1101, 100, -1, 4, 0).
			expectMemAt(4, 99),

		sessionTest("echo", 3, 0, 4, 0, 99).
			withInput(42).
			expectOutput(42),

		sessionTest("self modification", 1101, 0, 104, 4, 99, 42, 99).
			expectOutput(42).
			expectIP(6),

		sessionTest("equal 8 position", 3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8).
			withInput(8).
			expectOutput(1),
		sessionTest("not equal 8 position", 3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8).
			withInput(7).
			expectOutput(0),
		sessionTest("less than 8 position", 3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8).
			withInput(5).
			expectOutput(1),
		sessionTest("not less than 8 position", 3, 9, 7, 9, 10, 9, 4, 9, 99, -1, 8).
			withInput(9).
			expectOutput(0),
		sessionTest("equal 8 immediate", 3, 3, 1108, -1, 8, 3, 4, 3, 99).
			withInput(8).
			expectOutput(1),
		sessionTest("less than 8 immediate", 3, 3, 1107, -1, 8, 3, 4, 3, 99).
			withInput(8).
			expectOutput(0),

		sessionTest("jump position zero", 3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9).
			withInput(0).
			expectOutput(0),
		sessionTest("jump position nonzero", 3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9).
			withInput(5).
			expectOutput(1),
		sessionTest("jump immediate zero", 3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1).
			withInput(0).
			expectOutput(0),
		sessionTest("jump immediate nonzero", 3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1).
			withInput(3).
			expectOutput(1),

		sessionTest("compare below 8", compare8...).withInput(7).expectOutput(999),
		sessionTest("compare at 8", compare8...).withInput(8).expectOutput(1000),
		sessionTest("compare above 8", compare8...).withInput(9).expectOutput(1001),

		sessionTest("quine", quine...).
			expectOutput(quine...).
			expectBase(16),

		sessionTest("large product", 1102, 34915192, 34915192, 7, 4, 7, 99, 0).
			expectOutput(1219070632396864),

		sessionTest("large immediate", 104, 1125899906842624, 99).
			expectOutput(1125899906842624),

		sessionTest("relative read", 109, 2000, 109, 19, 204, -34, 99).
			withMemAt(1985, 7).
			expectOutput(7).
			expectBase(2019),

		sessionTest("relative write", 109, 5, 21101, 2, 3, 20, 204, 20, 99).
			expectOutput(5).
			expectMemAt(25, 5),

		sessionTest("padding", 1101, 1, 1, 40, 99).
			withPadding(64).
			withOptions(WithMemLimit(69)).
			expectMemAt(40, 2),

		sessionTest("unknown opcode", 98).
			expectError(new(DecodeError)),

		sessionTest("invalid mode", 301, 0, 0, 0, 99).
			expectError(new(DecodeError)),

		sessionTest("immediate destination", 11101, 1, 1, 0, 99).
			expectError(&ModeError{}, func(t *testing.T) {}),

		sessionTest("negative address", 1, -1, 0, 0, 99).
			expectError(new(AddressError)),

		sessionTest("negative jump", 1105, 1, -5).
			expectError(new(AddressError)),

		sessionTest("memory limit", 1101, 1, 1, 100, 99).
			withOptions(WithMemLimit(16)).
			expectError(new(mem.LimitError)),

		sessionTest("starved input", 3, 0, 99).
			expectError(new(StarvedInputError)).
			expectIP(0),

		sessionTest("runaway", 1105, 1, 0).
			withTimeout(10 * time.Millisecond).
			expectError(new(interface{ Timeout() bool })),
	}.run(t)
}

var (
	quine = []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}

	compare8 = []int64{
		3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
		1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
		999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
	}
)

func Test_Session_errorDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("decode", func(t *testing.T) {
		s, err := Load(Program{1101, 1, 1, 3, 42}, 0)
		require.NoError(t, err)
		_, err = s.Run(ctx)
		var de DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, uint(4), de.IP)
		assert.Equal(t, int64(42), de.Word)
	})

	t.Run("immediate destination", func(t *testing.T) {
		s, err := Load(Program{11101, 1, 1, 0, 99}, 0)
		require.NoError(t, err)
		_, err = s.Run(ctx)
		assert.Equal(t, ModeError{IP: 0, Param: 2, Mode: Immediate}, err)
	})

	t.Run("negative relative address", func(t *testing.T) {
		s, err := Load(Program{109, -10, 204, 5, 99}, 0)
		require.NoError(t, err)
		_, err = s.Run(ctx)
		assert.Equal(t, AddressError{IP: 2, Addr: -5, Op: "read"}, err)
	})

	t.Run("address wider than uint", func(t *testing.T) {
		const narrow = uint64(1<<32 - 1)
		_, err := boundAddress(3, 1<<32+9, "write", narrow)
		assert.Equal(t, AddressError{IP: 3, Addr: 1<<32 + 9, Op: "write"}, err)
		_, err = boundAddress(3, 1<<40, "jump", narrow)
		assert.Equal(t, AddressError{IP: 3, Addr: 1 << 40, Op: "jump"}, err)
		at, err := boundAddress(3, 9, "read", narrow)
		require.NoError(t, err)
		assert.Equal(t, uint(9), at)
	})

	t.Run("high store does not alias low memory", func(t *testing.T) {
		s, err := Load(Program{1101, 7, 0, 1<<32 + 9, 4, 9, 99, 0, 0, 5}, 0)
		require.NoError(t, err)
		out, err := s.Run(ctx)
		if maxAddress < 1<<32+9 {
			var ae AddressError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, "write", ae.Op)
			return
		}
		require.NoError(t, err)
		assert.Equal(t, []int64{5}, out)
	})

	t.Run("faults are sticky", func(t *testing.T) {
		s, err := Load(Program{98}, 0)
		require.NoError(t, err)
		_, err1 := s.Step()
		_, err2 := s.Step()
		require.Error(t, err1)
		assert.Equal(t, err1, err2)
		assert.Equal(t, err1, s.Err())
		_, err = s.MarshalBinary()
		assert.Error(t, err, "faulted sessions must not snapshot")
	})

	t.Run("load past limit", func(t *testing.T) {
		_, err := Load(Program{1, 2, 3, 4}, 10, WithMemLimit(8))
		var ae AddressError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "load", ae.Op)
		var le mem.LimitError
		assert.True(t, errors.As(err, &le))
	})
}
