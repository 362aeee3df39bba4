package host

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/intcode"
	"github.com/jcorbin/intcode/internal/panicerr"
)

// SearchResult is the best outcome found by MaxSignal.
type SearchResult struct {
	Signal int64
	Phases []int64
}

// MaxSignal runs an amplifier chain for every permutation of phases,
// returning the permutation that produces the largest output signal. Ties go
// to the permutation that sorts first in generation order.
//
// Permutations are evaluated in parallel, up to GOMAXPROCS at once; the
// first error cancels the rest. Options are passed to each NewAmplifiers,
// so a WithLogf function must be safe for concurrent use.
func MaxSignal(
	ctx context.Context,
	prog intcode.Program,
	phases []int64,
	feedback bool,
	signal int64,
	opts ...Option,
) (SearchResult, error) {
	if len(phases) == 0 {
		return SearchResult{}, errNoPhases
	}

	var (
		mu   sync.Mutex
		best SearchResult
		seq  = -1
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	i := 0
	permute(append([]int64(nil), phases...), func(perm []int64) bool {
		if ctx.Err() != nil {
			return false
		}
		perm = append([]int64(nil), perm...)
		n := i
		i++
		eg.Go(panicerr.Func(fmt.Sprintf("phases %v", perm), func() error {
			amps, err := NewAmplifiers(prog, perm, feedback, opts...)
			if err != nil {
				return err
			}
			out, err := amps.Run(ctx, signal)
			if err != nil {
				return fmt.Errorf("phases %v: %w", perm, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if seq < 0 || out > best.Signal || (out == best.Signal && n < seq) {
				best, seq = SearchResult{out, perm}, n
			}
			return nil
		}))
		return true
	})
	if err := eg.Wait(); err != nil {
		return SearchResult{}, err
	}
	return best, nil
}

// permute calls each with every permutation of values, generated in place
// by Heap's algorithm, until each returns false.
func permute(values []int64, each func([]int64) bool) {
	c := make([]int, len(values))
	if !each(values) {
		return
	}
	for i := 0; i < len(values); {
		if c[i] < i {
			if i%2 == 0 {
				values[0], values[i] = values[i], values[0]
			} else {
				values[c[i]], values[i] = values[i], values[c[i]]
			}
			if !each(values) {
				return
			}
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}
