package intcode

import (
	"fmt"
	"strconv"
)

// Opcode selects an instruction; it is the low two decimal digits of an
// instruction word.
type Opcode uint8

// Opcodes.
const (
	OpAdd         Opcode = 1
	OpMul         Opcode = 2
	OpInput       Opcode = 3
	OpOutput      Opcode = 4
	OpJumpIfTrue  Opcode = 5
	OpJumpIfFalse Opcode = 6
	OpLessThan    Opcode = 7
	OpEquals      Opcode = 8
	OpAdjustBase  Opcode = 9
	OpHalt        Opcode = 99
)

type opInfo struct {
	name   string
	params int
	dst    int // index of the destination parameter, or -1
}

var opInfos = map[Opcode]opInfo{
	OpAdd:         {"add", 3, 2},
	OpMul:         {"mul", 3, 2},
	OpInput:       {"in", 1, 0},
	OpOutput:      {"out", 1, -1},
	OpJumpIfTrue:  {"jt", 2, -1},
	OpJumpIfFalse: {"jf", 2, -1},
	OpLessThan:    {"lt", 3, 2},
	OpEquals:      {"eq", 3, 2},
	OpAdjustBase:  {"arb", 1, -1},
	OpHalt:        {"halt", 0, -1},
}

// Valid returns true only for known opcodes.
func (op Opcode) Valid() bool {
	_, ok := opInfos[op]
	return ok
}

// Params returns the number of parameters that op takes.
func (op Opcode) Params() int { return opInfos[op].params }

// Dest returns the index of op's destination parameter, if it writes one.
func (op Opcode) Dest() (int, bool) {
	if info, ok := opInfos[op]; ok && info.dst >= 0 {
		return info.dst, true
	}
	return 0, false
}

func (op Opcode) String() string {
	if info, ok := opInfos[op]; ok {
		return info.name
	}
	return "op" + strconv.Itoa(int(op))
}

// LookupOpcode returns the opcode with the given mnemonic.
func LookupOpcode(name string) (Opcode, bool) {
	for op, info := range opInfos {
		if info.name == name {
			return op, true
		}
	}
	return 0, false
}

// Mode governs how a parameter's literal is interpreted.
type Mode uint8

// Parameter modes.
const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode%d", uint8(m))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Opcode
	Modes [3]Mode
}

// Len returns the number of words the instruction occupies.
func (in Instruction) Len() uint { return 1 + uint(in.Op.Params()) }

// Word encodes the instruction back into an instruction word.
func (in Instruction) Word() int64 {
	word := int64(in.Op)
	for k, scale := 0, int64(100); k < len(in.Modes); k, scale = k+1, scale*10 {
		word += int64(in.Modes[k]) * scale
	}
	return word
}

// Decode splits an instruction word into an opcode and parameter modes.
// The returned DecodeError carries no IP; the engine fills it in.
func Decode(word int64) (Instruction, error) {
	var in Instruction
	if word < 0 {
		return in, DecodeError{Word: word, Reason: "negative instruction word"}
	}
	if word >= 100000 {
		return in, DecodeError{Word: word, Reason: "too many mode digits"}
	}
	in.Op = Opcode(word % 100)
	if !in.Op.Valid() {
		return in, DecodeError{Word: word, Reason: "unknown opcode " + strconv.Itoa(int(in.Op))}
	}
	for k, digits := 0, word/100; k < in.Op.Params(); k, digits = k+1, digits/10 {
		mode := Mode(digits % 10)
		switch mode {
		case Position, Immediate, Relative:
		default:
			return in, DecodeError{Word: word, Reason: fmt.Sprintf("invalid mode %d for parameter %d", uint8(mode), k)}
		}
		in.Modes[k] = mode
	}
	return in, nil
}
