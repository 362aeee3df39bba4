package intcode

// Memory is the word store that operands resolve against.
// It is implemented by *mem.Words.
type Memory interface {
	Load(addr uint) (int64, error)
	Stor(addr uint, values ...int64) error
}

// literal returns the raw value of parameter k of the instruction at ip.
func literal(m Memory, ip uint, k int) (int64, error) {
	addr := ip + 1 + uint(k)
	val, err := m.Load(addr)
	if err != nil {
		return 0, AddressError{IP: ip, Addr: int64(addr), Op: "fetch", Err: err}
	}
	return val, nil
}

// ReadOperand resolves the value of parameter k of the instruction at ip.
func ReadOperand(m Memory, ip uint, k int, mode Mode, base int64) (int64, error) {
	lit, err := literal(m, ip, k)
	if err != nil {
		return 0, err
	}
	var addr int64
	switch mode {
	case Immediate:
		return lit, nil
	case Position:
		addr = lit
	case Relative:
		addr = lit + base
	default:
		return 0, DecodeError{IP: ip, Reason: "invalid mode " + mode.String()}
	}
	at, err := wordAddress(ip, addr, "read")
	if err != nil {
		return 0, err
	}
	val, err := m.Load(at)
	if err != nil {
		return 0, AddressError{IP: ip, Addr: addr, Op: "read", Err: err}
	}
	return val, nil
}

// WriteAddress resolves the address that parameter k of the instruction at
// ip designates as a destination.
func WriteAddress(m Memory, ip uint, k int, mode Mode, base int64) (uint, error) {
	lit, err := literal(m, ip, k)
	if err != nil {
		return 0, err
	}
	var addr int64
	switch mode {
	case Position:
		addr = lit
	case Relative:
		addr = lit + base
	case Immediate:
		return 0, ModeError{IP: ip, Param: k, Mode: mode}
	default:
		return 0, DecodeError{IP: ip, Reason: "invalid mode " + mode.String()}
	}
	return wordAddress(ip, addr, "write")
}

// maxAddress is the largest address representable on this platform.
const maxAddress = uint64(^uint(0))

// wordAddress converts a computed address to a memory address, rejecting
// negative values and ones that do not fit in a uint.
func wordAddress(ip uint, addr int64, op string) (uint, error) {
	return boundAddress(ip, addr, op, maxAddress)
}

func boundAddress(ip uint, addr int64, op string, limit uint64) (uint, error) {
	if addr < 0 || uint64(addr) > limit {
		return 0, AddressError{IP: ip, Addr: addr, Op: op}
	}
	return uint(addr), nil
}
