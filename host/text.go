package host

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jcorbin/intcode"
	"github.com/jcorbin/intcode/internal/fileinput"
	"github.com/jcorbin/intcode/internal/flushio"
)

// MaxTextValue bounds the output values that Text treats as characters.
const MaxTextValue = 128

// ErrInputExhausted is returned by Text.Run when the session needs input
// after every input stream has been read.
var ErrInputExhausted = errors.New("input exhausted")

// Text drives a session that speaks ASCII: output values below MaxTextValue
// are written as characters, any others are collected in Results. Input is
// read one rune at a time from a queue of readers; output is flushed before
// each read.
type Text struct {
	logging
	Session *intcode.Session
	Results []int64

	in  fileinput.Input
	out flushio.WriteFlusher
}

// NewText creates a text adapter writing to out and reading from in, in
// order; only WithLogf applies.
func NewText(s *intcode.Session, out io.Writer, in []io.Reader, opts ...Option) *Text {
	conf := newConfig(opts)
	return &Text{
		logging: conf.logging,
		Session: s,
		in:      fileinput.Input{Queue: in},
		out:     flushio.NewWriteFlusher(out),
	}
}

// Run drives the session until it halts. A session that is already
// awaiting input, e.g. one restored from a snapshot, is given input first.
func (tx *Text) Run(ctx context.Context) (rerr error) {
	defer func() {
		if err := tx.out.Flush(); rerr == nil {
			rerr = err
		}
	}()
	for {
		if tx.Session.AwaitingInput() {
			if err := tx.readInput(); err != nil {
				return err
			}
		}

		res, err := tx.Session.Drive(ctx)
		if err != nil {
			return err
		}
		switch res.Signal {
		case intcode.Output:
			if res.Value < 0 || res.Value >= MaxTextValue {
				tx.logf("result: %v", res.Value)
				tx.Results = append(tx.Results, res.Value)
			} else if _, err := tx.out.Write([]byte{byte(res.Value)}); err != nil {
				return err
			}
		case intcode.Halted:
			return nil
		}
	}
}

func (tx *Text) readInput() error {
	if err := tx.out.Flush(); err != nil {
		return err
	}
	r, _, err := tx.in.ReadRune()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w after %v", ErrInputExhausted, tx.in.Location())
	} else if err != nil {
		return err
	}
	return tx.Session.SupplyInput(int64(r))
}
