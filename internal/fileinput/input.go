// Package fileinput reads runes sequentially from a queue of input streams,
// tracking the position of the last rune read.
package fileinput

import (
	"bufio"
	"fmt"
	"io"
)

// Location names a position within an input stream.
type Location struct {
	Name string
	Line int
	Col  int
}

func (loc Location) String() string {
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

// Input implements io.RuneReader over a Queue of streams, moving on to the
// next stream after each one is exhausted. Streams that implement io.Closer
// are closed once read.
type Input struct {
	Queue []io.Reader

	rr    io.RuneReader
	cur   io.Reader
	count int
	loc   Location
}

// Location returns the position of the last rune read.
func (in *Input) Location() Location { return in.loc }

// ReadRune reads the next rune, returning io.EOF only once every queued
// stream has been exhausted.
func (in *Input) ReadRune() (rune, int, error) {
	for {
		if in.rr == nil && !in.next() {
			return 0, 0, io.EOF
		}
		r, n, err := in.rr.ReadRune()
		if err == io.EOF {
			in.close()
			continue
		}
		if err != nil {
			return 0, 0, err
		}
		if r == '\n' {
			in.loc.Line++
			in.loc.Col = 0
		} else {
			in.loc.Col++
		}
		return r, n, nil
	}
}

func (in *Input) next() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.count++
	in.cur = r
	if rr, ok := r.(io.RuneReader); ok {
		in.rr = rr
	} else {
		in.rr = bufio.NewReader(r)
	}
	in.loc = Location{Name: nameOf(r, in.count), Line: 1}
	return true
}

func (in *Input) close() {
	if cl, ok := in.cur.(io.Closer); ok {
		cl.Close()
	}
	in.rr, in.cur = nil, nil
}

func nameOf(r io.Reader, n int) string {
	if nom, ok := r.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<input #%v>", n)
}
