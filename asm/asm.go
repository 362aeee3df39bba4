// Package asm implements a small assembler for intcode programs.
//
// Source is line oriented; a semicolon starts a comment that runs to the end
// of the line. Each line may start with a label definition ("name:"),
// followed by an instruction or a data directive:
//
//	loop:  in [x]            ; position operand
//	       add [x], 1, [x]   ; immediate operands are bare
//	       out [rb-1]        ; relative operands offset the relative base
//	       jt [x], loop      ; labels evaluate to their address
//	       halt
//	x:     data 0
//	msg:   data "hi\n", 0    ; strings emit one word per rune
//
// Mnemonics are those of intcode.Opcode.String: add mul in out jt jf lt eq
// arb halt. Operand expressions are integers (in any strconv base 0 form),
// labels, or a label plus or minus an integer.
package asm

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/jcorbin/intcode"
)

// Assemble compiles source read from r into a program. The name is only used
// to locate errors; if any line fails, the returned error is an Errors list.
func Assemble(name string, r io.Reader) (intcode.Program, error) {
	as := assembler{name: name, labels: make(map[string]int64)}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		as.line++
		as.parseLine(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "%v: read failed", name)
	}
	as.resolve()
	if len(as.errs) > 0 {
		return nil, as.errs
	}
	return as.prog, nil
}

// AssembleString compiles source from a string.
func AssembleString(name, src string) (intcode.Program, error) {
	return Assemble(name, strings.NewReader(src))
}

// MustAssemble is like AssembleString but panics on error; it simplifies
// declaring programs in tests.
func MustAssemble(name, src string) intcode.Program {
	prog, err := AssembleString(name, src)
	if err != nil {
		panic(err)
	}
	return prog
}

// Errors collects every error found while assembling.
type Errors []error

func (errs Errors) Error() string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

// Unwrap returns the first error.
func (errs Errors) Unwrap() error {
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
