package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorbin/intcode"
)

// Amplifiers is a chain of sessions running the same program, each
// configured with a phase setting, and each feeding its output into the
// next. With feedback, the last amplifier feeds back into the first.
type Amplifiers struct {
	*Graph
	Phases   []int64
	Feedback bool
}

var errNoPhases = errors.New("amplifiers need at least one phase setting")

// NewAmplifiers loads one session per phase setting; each session receives
// its phase as its first input.
func NewAmplifiers(prog intcode.Program, phases []int64, feedback bool, opts ...Option) (*Amplifiers, error) {
	if len(phases) == 0 {
		return nil, errNoPhases
	}
	conf := newConfig(opts)
	amps := &Amplifiers{
		Graph:    &Graph{logging: conf.logging},
		Phases:   append([]int64(nil), phases...),
		Feedback: feedback,
	}
	var prev *Node
	for i, phase := range phases {
		name := ampName(i)
		s, err := conf.load(prog, name, intcode.WithInput(phase))
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		node := amps.Add(name, s)
		if prev != nil {
			amps.Connect(prev, node)
		}
		prev = node
	}
	if feedback {
		amps.Connect(prev, amps.nodes[0])
	}
	return amps, nil
}

func ampName(i int) string {
	if i < 26 {
		return fmt.Sprintf("amp%c", 'A'+i)
	}
	return fmt.Sprintf("amp%v", i)
}

// Run sends signal into the first amplifier, runs every amplifier to halt,
// and returns the last value output by the last amplifier.
func (amps *Amplifiers) Run(ctx context.Context, signal int64) (int64, error) {
	first, last := amps.nodes[0], amps.nodes[len(amps.nodes)-1]
	amps.Send(first, signal)
	if err := amps.Graph.Run(ctx); err != nil {
		return 0, err
	}
	if !last.HasLast {
		return 0, fmt.Errorf("%v halted without output", last.Name)
	}
	return last.Last, nil
}
