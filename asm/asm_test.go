package asm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/intcode"
	"github.com/jcorbin/intcode/asm"
)

type asmTestCase struct {
	name    string
	src     string
	want    intcode.Program
	errs    []string
	inputs  []int64
	outputs []int64
}

func asmTest(name string, lines ...string) asmTestCase {
	var tc asmTestCase
	tc.name = name
	for _, line := range lines {
		tc.src += line + "\n"
	}
	return tc
}

func (tc asmTestCase) expectProgram(words ...int64) asmTestCase {
	tc.want = words
	return tc
}

func (tc asmTestCase) expectErrors(errs ...string) asmTestCase {
	tc.errs = errs
	return tc
}

func (tc asmTestCase) expectRun(inputs []int64, outputs ...int64) asmTestCase {
	tc.inputs = inputs
	tc.outputs = outputs
	return tc
}

func (tc asmTestCase) run(t *testing.T) {
	prog, err := asm.AssembleString(tc.name, tc.src)
	if len(tc.errs) > 0 {
		require.Error(t, err, "expected assembly to fail")
		var errs asm.Errors
		require.True(t, errors.As(err, &errs), "expected an asm.Errors, got %T", err)
		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		assert.Equal(t, tc.errs, msgs, "expected errors")
		return
	}
	require.NoError(t, err, "unexpected assembly error")
	if tc.want != nil {
		assert.Equal(t, tc.want, prog, "expected program")
	}
	if tc.outputs != nil {
		s, err := intcode.Load(prog, 0, intcode.WithName(tc.name), intcode.WithLogf(t.Logf))
		require.NoError(t, err, "unexpected load error")
		outputs, err := s.Run(context.Background(), tc.inputs...)
		require.NoError(t, err, "unexpected run error")
		assert.Equal(t, tc.outputs, outputs, "expected outputs")
	}
}

func TestAssemble(t *testing.T) {
	for _, tc := range []asmTestCase{
		asmTest("empty",
			"; nothing here",
			"",
		).expectProgram(),

		asmTest("label only",
			"start:",
			"      jt 1, start",
		).expectProgram(1105, 1, 0),

		asmTest("equal to 8",
			"     in [x]",
			"     eq [x], 8, [x] ; compare in place",
			"     out [x]",
			"     halt",
			"x:   data 0",
		).expectProgram(
			3, 9, 1008, 9, 8, 9, 4, 9, 99, 0,
		).expectRun([]int64{8}, 1),

		asmTest("relative operands",
			"     arb buf",
			"     in [rb]",
			"     add [rb], 1, [rb+1]",
			"     out [rb+1]",
			"     arb 2",
			"     out [rb-1]",
			"     halt",
			"buf: data 0, 0",
		).expectProgram(
			109, 15,
			203, 0,
			21201, 0, 1, 1,
			204, 1,
			109, 2,
			204, -1,
			99,
			0, 0,
		).expectRun([]int64{41}, 42, 42),

		asmTest("label arithmetic",
			"     out [end-1]",
			"     out end+1",
			"     out -7",
			"     halt",
			"     data 0x10",
			"end:",
		).expectProgram(
			4, 7, 104, 9, 104, -7, 99, 16,
		).expectRun(nil, 16, 9, -7),

		asmTest("jumps",
			"loop: jf [n], done",
			"      out [n]",
			"      add [n], -1, [n]",
			"      jt 1, loop",
			"done: halt",
			"n:    data 3",
		).expectRun(nil, 3, 2, 1),

		asmTest("comment after string",
			`      data "a;b", 0  ; only this is a comment`,
		).expectProgram('a', ';', 'b', 0),

		asmTest("string data",
			`msg: data "hi\n", 0`,
		).expectProgram('h', 'i', '\n', 0),

		asmTest("errors",
			"a:   nop",
			"     add 1, 2, 3",
			"     out",
			"     in [x]",
			"a:   halt",
			"     data",
			`     data "open`,
			"     out [rb*2]",
		).expectErrors(
			`errors:1: unknown mnemonic "nop"`,
			"errors:2: operand 2: add destination must not be immediate",
			"errors:3: out takes 1 operands, got 0",
			`errors:5: label "a" redefined`,
			"errors:6: data needs at least one value",
			"errors:7: invalid string \"open: invalid syntax",
			`errors:8: operand 0: invalid relative operand "[rb*2]"`,
			`errors:4: undefined label "x"`,
		),
	} {
		t.Run(tc.name, tc.run)
	}
}

func TestMustAssemble(t *testing.T) {
	assert.Equal(t, intcode.Program{99}, asm.MustAssemble("halt", "halt"))
	assert.Panics(t, func() { asm.MustAssemble("bad", "nope") })
}
