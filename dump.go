package intcode

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Dump writes the session's registers and a best-effort disassembly of its
// memory to w. Words that do not decode, or whose parameters would run past
// the last non-zero word of their page, are shown as data. Unallocated space
// and the zero tail of each page are elided with a "..." line.
func (s *Session) Dump(w io.Writer) error {
	return sessionDumper{s: s, out: w}.dump()
}

type sessionDumper struct {
	s   *Session
	out io.Writer

	addrWidth int
}

// span is a half-open address range [start, end).
type span struct{ start, end uint }

func (dump sessionDumper) dump() error {
	var buf strings.Builder
	if dump.s.name != "" {
		fmt.Fprintf(&buf, "# Session %v\n", dump.s.name)
	} else {
		fmt.Fprintf(&buf, "# Session\n")
	}
	fmt.Fprintf(&buf, "  ip: %v\n", dump.s.ip)
	fmt.Fprintf(&buf, "  rb: %v\n", dump.s.base)
	fmt.Fprintf(&buf, "  state: %v\n", dump.s.state())
	if len(dump.s.queue) > 0 {
		fmt.Fprintf(&buf, "  queue: %v\n", dump.s.queue)
	}

	spans := dump.spans()
	if dump.addrWidth == 0 && len(spans) > 0 {
		dump.addrWidth = len(strconv.FormatUint(uint64(spans[len(spans)-1].end), 10))
	}

	var last uint
	for _, sp := range spans {
		if gap := sp.start - last; gap > 0 {
			fmt.Fprintf(&buf, "  ... %v zero words\n", gap)
		}
		for addr := sp.start; addr < sp.end; {
			mark := "  "
			if addr == dump.s.ip {
				mark = "> "
			}
			fmt.Fprintf(&buf, "%v@%*v ", mark, dump.addrWidth, addr)
			addr = dump.formatAt(&buf, addr, sp.end)
			buf.WriteByte('\n')
		}
		last = sp.end
	}

	_, err := io.WriteString(dump.out, buf.String())
	return err
}

// spans returns the sorted address ranges worth showing: each allocated
// page up to its last non-zero word, plus the instruction pointer if it
// lies within allocated space.
func (dump sessionDumper) spans() []span {
	var spans []span
	_ = dump.s.mem.EachPage(func(base uint, page []int64) error {
		end := len(page)
		for end > 0 && page[end-1] == 0 {
			end--
		}
		if end > 0 {
			spans = append(spans, span{base, base + uint(end)})
		}
		return nil
	})
	if ip := dump.s.ip; ip < dump.s.mem.Size() {
		spans = append(spans, span{ip, ip + 1})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && sp.start <= merged[n-1].end {
			if sp.end > merged[n-1].end {
				merged[n-1].end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

func (dump sessionDumper) formatAt(buf *strings.Builder, addr, end uint) uint {
	word, _ := dump.s.mem.Load(addr)
	if in, err := Decode(word); err == nil && addr+in.Len() <= end {
		buf.WriteString(formatInstruction(&dump.s.mem, addr, in))
		return addr + in.Len()
	}
	buf.WriteString("data ")
	buf.WriteString(strconv.FormatInt(word, 10))
	return addr + 1
}

func (s *Session) state() string {
	switch {
	case s.err != nil:
		return "faulted: " + s.err.Error()
	case s.halted:
		return "halted"
	case s.awaiting && !s.hasPending:
		return "needs input"
	default:
		return "running"
	}
}

// formatInstruction renders the instruction at ip in assembler syntax:
// immediate operands are bare, position operands are [addr], and relative
// ones are [rb+offset].
func formatInstruction(m Memory, ip uint, in Instruction) string {
	var sb strings.Builder
	sb.WriteString(in.Op.String())
	for k := 0; k < in.Op.Params(); k++ {
		if k == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		lit, _ := m.Load(ip + 1 + uint(k))
		sb.WriteString(FormatOperand(in.Modes[k], lit))
	}
	return sb.String()
}

// FormatOperand renders a parameter literal in assembler syntax.
func FormatOperand(mode Mode, lit int64) string {
	switch mode {
	case Immediate:
		return strconv.FormatInt(lit, 10)
	case Relative:
		if lit < 0 {
			return "[rb" + strconv.FormatInt(lit, 10) + "]"
		}
		return "[rb+" + strconv.FormatInt(lit, 10) + "]"
	default:
		return "[" + strconv.FormatInt(lit, 10) + "]"
	}
}
