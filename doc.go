/* Package intcode implements the Intcode virtual machine.

An Intcode program is a memory image of signed 64-bit words. Execution starts
at address 0; each instruction word packs an opcode in its low two decimal
digits, and one parameter mode per following decimal digit:

	word = opcode + 100*mode0 + 1000*mode1 + 10000*mode2

Parameters are interpreted in one of three modes:
- position (0): the parameter is an address, [addr]
- immediate (1): the parameter is the value itself
- relative (2): the parameter is an offset from the relative base, [rb+offset]

Destination parameters are never immediate.

	opcode  name  effect                      length
	1       add   dst = a + b                 4
	2       mul   dst = a * b                 4
	3       in    dst = next input            2
	4       out   emit a                      2
	5       jt    if a != 0 jump to b         3
	6       jf    if a == 0 jump to b         3
	7       lt    dst = a < b ? 1 : 0         4
	8       eq    dst = a == b ? 1 : 0        4
	9       arb   rb += a                     2
	99      halt  stop                        1

A Session owns one memory image, instruction pointer, and relative base.
Hosts drive it one instruction at a time with Step, which reports whether the
instruction emitted output, needs input, or halted. A session that needs
input suspends without side effect, resuming exactly where it left off once
the host calls SupplyInput; this lets independently owned sessions be wired
into pipelines and networks by a host scheduler (see package host).

Memory is sparse and reads as zero everywhere until written; it grows on
demand, optionally up to a limit.
*/
package intcode
