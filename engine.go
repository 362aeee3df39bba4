package intcode

// exec fetches, decodes, and executes the instruction at ip. Memory is
// re-read on every fetch, so self-modified code runs as modified.
func (s *Session) exec() (StepResult, error) {
	ip := s.ip
	word, err := s.mem.Load(ip)
	if err != nil {
		return StepResult{}, AddressError{IP: ip, Addr: int64(ip), Op: "fetch", Err: err}
	}
	in, err := Decode(word)
	if err != nil {
		if de, ok := err.(DecodeError); ok {
			de.IP = ip
			err = de
		}
		return StepResult{}, err
	}

	if s.logfn != nil {
		s.logf(">", "exec @%v %v -- rb:%v", ip, formatInstruction(&s.mem, ip, in), s.base)
	}

	switch in.Op {
	case OpAdd, OpMul, OpLessThan, OpEquals:
		a, err := s.read(in, 0)
		if err != nil {
			return StepResult{}, err
		}
		b, err := s.read(in, 1)
		if err != nil {
			return StepResult{}, err
		}
		var val int64
		switch in.Op {
		case OpAdd:
			val = a + b
		case OpMul:
			val = a * b
		case OpLessThan:
			val = boolWord(a < b)
		case OpEquals:
			val = boolWord(a == b)
		}
		if err := s.write(in, 2, val); err != nil {
			return StepResult{}, err
		}

	case OpInput:
		addr, err := WriteAddress(&s.mem, ip, 0, in.Modes[0], s.base)
		if err != nil {
			return StepResult{}, err
		}
		val, ok := s.nextInput()
		if !ok {
			return StepResult{Signal: NeedsInput}, nil
		}
		if err := s.stor(addr, val); err != nil {
			return StepResult{}, err
		}

	case OpOutput:
		a, err := s.read(in, 0)
		if err != nil {
			return StepResult{}, err
		}
		s.advance(in)
		return StepResult{Signal: Output, Value: a}, nil

	case OpJumpIfTrue, OpJumpIfFalse:
		a, err := s.read(in, 0)
		if err != nil {
			return StepResult{}, err
		}
		b, err := s.read(in, 1)
		if err != nil {
			return StepResult{}, err
		}
		if (a != 0) == (in.Op == OpJumpIfTrue) {
			to, err := wordAddress(ip, b, "jump")
			if err != nil {
				return StepResult{}, err
			}
			s.steps++
			s.ip = to
			return StepResult{Signal: Continue}, nil
		}

	case OpAdjustBase:
		a, err := s.read(in, 0)
		if err != nil {
			return StepResult{}, err
		}
		s.base += a

	case OpHalt:
		s.steps++
		return StepResult{Signal: Halted}, nil
	}

	s.advance(in)
	return StepResult{Signal: Continue}, nil
}

func (s *Session) advance(in Instruction) {
	s.steps++
	s.ip += in.Len()
}

func (s *Session) read(in Instruction, k int) (int64, error) {
	return ReadOperand(&s.mem, s.ip, k, in.Modes[k], s.base)
}

func (s *Session) write(in Instruction, k int, val int64) error {
	addr, err := WriteAddress(&s.mem, s.ip, k, in.Modes[k], s.base)
	if err != nil {
		return err
	}
	return s.stor(addr, val)
}

func (s *Session) stor(addr uint, val int64) error {
	if err := s.mem.Stor(addr, val); err != nil {
		return AddressError{IP: s.ip, Addr: int64(addr), Op: "write", Err: err}
	}
	return nil
}

// nextInput takes any supplied value first, then any queued one.
func (s *Session) nextInput() (int64, bool) {
	if s.hasPending {
		val := s.pending
		s.pending, s.hasPending = 0, false
		s.awaiting = false
		return val, true
	}
	if len(s.queue) > 0 {
		val := s.queue[0]
		s.queue = s.queue[1:]
		s.awaiting = false
		return val, true
	}
	return 0, false
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
