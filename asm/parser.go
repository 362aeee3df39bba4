package asm

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/jcorbin/intcode"
)

type assembler struct {
	name   string
	line   int
	prog   intcode.Program
	labels map[string]int64
	fixups []fixup
	errs   Errors
}

// fixup patches prog[addr] with sign*labels[label] + offset once all labels
// are known.
type fixup struct {
	addr   int
	line   int
	label  string
	sign   int64
	offset int64
}

// expr is a parsed operand expression.
type expr struct {
	label  string
	sign   int64
	offset int64
}

func (e expr) negate() expr {
	e.sign, e.offset = -e.sign, -e.offset
	return e
}

func (as *assembler) errorf(format string, args ...interface{}) {
	as.errs = append(as.errs, errors.Errorf("%v:%v: "+format,
		append([]interface{}{as.name, as.line}, args...)...))
}

func (as *assembler) parseLine(text string) {
	text = strings.TrimSpace(stripComment(text))
	if text == "" {
		return
	}

	if i := strings.IndexByte(text, ':'); i >= 0 && isIdent(text[:i]) {
		as.define(text[:i])
		text = strings.TrimSpace(text[i+1:])
		if text == "" {
			return
		}
	}

	mnemonic, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		mnemonic, rest = text[:i], strings.TrimSpace(text[i+1:])
	}
	args := splitArgs(rest)

	if mnemonic == "data" {
		as.data(args)
		return
	}

	op, ok := intcode.LookupOpcode(mnemonic)
	if !ok {
		as.errorf("unknown mnemonic %q", mnemonic)
		return
	}
	as.instruction(op, args)
}

func (as *assembler) define(label string) {
	if _, defined := as.labels[label]; defined {
		as.errorf("label %q redefined", label)
		return
	}
	as.labels[label] = int64(len(as.prog))
}

func (as *assembler) instruction(op intcode.Opcode, args []string) {
	if len(args) != op.Params() {
		as.errorf("%v takes %v operands, got %v", op, op.Params(), len(args))
		return
	}
	in := intcode.Instruction{Op: op}
	at := len(as.prog)
	as.prog = append(as.prog, 0)
	for k, arg := range args {
		mode, e, err := parseOperand(arg)
		if err != nil {
			as.errorf("operand %v: %v", k, err)
			return
		}
		if dst, ok := op.Dest(); ok && dst == k && mode == intcode.Immediate {
			as.errorf("operand %v: %v destination must not be immediate", k, op)
			return
		}
		in.Modes[k] = mode
		as.emit(e)
	}
	as.prog[at] = in.Word()
}

func (as *assembler) data(args []string) {
	if len(args) == 0 {
		as.errorf("data needs at least one value")
		return
	}
	for _, arg := range args {
		if strings.HasPrefix(arg, `"`) {
			s, err := strconv.Unquote(arg)
			if err != nil {
				as.errorf("invalid string %v: %v", arg, err)
				return
			}
			for _, r := range s {
				as.prog = append(as.prog, int64(r))
			}
			continue
		}
		e, err := parseExpr(arg)
		if err != nil {
			as.errorf("%v", err)
			return
		}
		as.emit(e)
	}
}

func (as *assembler) emit(e expr) {
	if e.label != "" {
		as.fixups = append(as.fixups, fixup{
			addr:   len(as.prog),
			line:   as.line,
			label:  e.label,
			sign:   e.sign,
			offset: e.offset,
		})
	}
	as.prog = append(as.prog, e.offset)
}

func (as *assembler) resolve() {
	for _, fix := range as.fixups {
		addr, defined := as.labels[fix.label]
		if !defined {
			as.line = fix.line
			as.errorf("undefined label %q", fix.label)
			continue
		}
		as.prog[fix.addr] = fix.sign*addr + fix.offset
	}
}

// parseOperand parses "expr", "[expr]", "[rb]", "[rb+expr]" or "[rb-expr]".
func parseOperand(arg string) (intcode.Mode, expr, error) {
	if !strings.HasPrefix(arg, "[") {
		e, err := parseExpr(arg)
		return intcode.Immediate, e, err
	}
	if !strings.HasSuffix(arg, "]") {
		return 0, expr{}, errors.Errorf("unterminated %q", arg)
	}
	inner := strings.TrimSpace(arg[1 : len(arg)-1])
	if !strings.HasPrefix(inner, "rb") || (len(inner) > 2 && isIdentRune(rune(inner[2]))) {
		e, err := parseExpr(inner)
		return intcode.Position, e, err
	}
	rest := strings.TrimSpace(inner[2:])
	switch {
	case rest == "":
		return intcode.Relative, expr{sign: 1}, nil
	case rest[0] == '+':
		e, err := parseExpr(strings.TrimSpace(rest[1:]))
		return intcode.Relative, e, err
	case rest[0] == '-':
		e, err := parseExpr(strings.TrimSpace(rest[1:]))
		return intcode.Relative, e.negate(), err
	}
	return 0, expr{}, errors.Errorf("invalid relative operand %q", arg)
}

// parseExpr parses "int", "label", "label+int" or "label-int".
func parseExpr(s string) (expr, error) {
	if s == "" {
		return expr{}, errors.New("missing expression")
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return expr{sign: 1, offset: n}, nil
	}
	label, offset := s, int64(0)
	if i := strings.LastIndexAny(s, "+-"); i > 0 {
		n, err := strconv.ParseInt(strings.TrimSpace(s[i:]), 0, 64)
		if err != nil {
			return expr{}, errors.Wrapf(err, "invalid offset in %q", s)
		}
		label, offset = strings.TrimSpace(s[:i]), n
	}
	if !isIdent(label) {
		return expr{}, errors.Errorf("invalid expression %q", s)
	}
	return expr{label: label, sign: 1, offset: offset}, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdent(s string) bool {
	if s == "" || unicode.IsDigit(rune(s[0])) {
		return false
	}
	for _, r := range s {
		if !isIdentRune(r) {
			return false
		}
	}
	return true
}

// stripComment drops everything from the first ';' outside of a string.
func stripComment(s string) string {
	inString, escaped := false, false
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case r == ';' && !inString:
			return s[:i]
		}
	}
	return s
}

// splitArgs splits a comma-separated operand list, respecting strings.
func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	var args []string
	inString, escaped, start := false, false, 0
	for i, r := range s {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case r == ',' && !inString:
			args = append(args, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(args, strings.TrimSpace(s[start:]))
}
