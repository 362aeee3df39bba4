package intcode

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("intcode: failed to create CBOR enc mode: %v", err))
	}
	snapshotEncMode = em
}

type snapshot struct {
	Name     string         `cbor:"1,keyasint,omitempty"`
	IP       uint64         `cbor:"2,keyasint"`
	Base     int64          `cbor:"3,keyasint"`
	Steps    uint64         `cbor:"4,keyasint"`
	Halted   bool           `cbor:"5,keyasint,omitempty"`
	Awaiting bool           `cbor:"6,keyasint,omitempty"`
	Pending  *int64         `cbor:"7,keyasint,omitempty"`
	Queue    []int64        `cbor:"8,keyasint,omitempty"`
	Limit    uint64         `cbor:"9,keyasint,omitempty"`
	Pages    []snapshotPage `cbor:"10,keyasint"`
}

type snapshotPage struct {
	Base  uint64  `cbor:"1,keyasint"`
	Words []int64 `cbor:"2,keyasint"`
}

// MarshalBinary encodes the complete session state (memory, registers, and
// any queued or supplied input) as canonical CBOR. Faulted sessions cannot
// be snapshotted.
func (s *Session) MarshalBinary() ([]byte, error) {
	if s.err != nil {
		return nil, fmt.Errorf("intcode: cannot snapshot faulted session: %w", s.err)
	}
	snap := snapshot{
		Name:     s.name,
		IP:       uint64(s.ip),
		Base:     s.base,
		Steps:    s.steps,
		Halted:   s.halted,
		Awaiting: s.awaiting,
		Queue:    s.queue,
		Limit:    uint64(s.mem.Limit),
	}
	if s.hasPending {
		pending := s.pending
		snap.Pending = &pending
	}
	_ = s.mem.EachPage(func(base uint, page []int64) error {
		end := len(page)
		for end > 0 && page[end-1] == 0 {
			end--
		}
		if end > 0 {
			snap.Pages = append(snap.Pages, snapshotPage{uint64(base), page[:end]})
		}
		return nil
	})
	return snapshotEncMode.Marshal(snap)
}

// UnmarshalBinary restores state encoded by MarshalBinary into a zero Session.
func (s *Session) UnmarshalBinary(data []byte) error {
	var snap snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("intcode: unmarshal snapshot: %w", err)
	}
	if s.mem.Size() != 0 || s.steps != 0 {
		return fmt.Errorf("intcode: unmarshal snapshot: session already in use")
	}
	if s.name == "" {
		s.name = snap.Name
		s.setLogName(s.name)
	}
	s.ip = uint(snap.IP)
	s.base = snap.Base
	s.steps = snap.Steps
	s.halted = snap.Halted
	s.awaiting = snap.Awaiting
	s.queue = snap.Queue
	if snap.Pending != nil {
		s.pending, s.hasPending = *snap.Pending, true
	}
	if s.mem.Limit == 0 {
		s.mem.Limit = uint(snap.Limit)
	}
	for _, page := range snap.Pages {
		if err := s.mem.Stor(uint(page.Base), page.Words...); err != nil {
			return fmt.Errorf("intcode: unmarshal snapshot: %w", err)
		}
	}
	return nil
}

// RestoreSession creates a session from a snapshot made by MarshalBinary.
// Options are applied first; a WithName or WithMemLimit option overrides the
// snapshotted value.
func RestoreSession(data []byte, opts ...SessionOption) (*Session, error) {
	var s Session
	SessionOptions(defaultOptions, SessionOptions(opts...)).apply(&s)
	queued := s.queue
	s.queue = nil
	if err := s.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	s.queue = append(s.queue, queued...)
	s.logf("#", "restore @%v rb:%v", s.ip, s.base)
	return &s, nil
}
