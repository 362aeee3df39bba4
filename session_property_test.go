package intcode

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// runningSum reads values until a 0, outputting the sum so far after each,
// and then once more at the end:
//
//	loop: in [100]
//	      jf [100], end
//	      add [101], [100], [101]
//	      out [101]
//	      jf 0, loop
//	end:  out [101]
//	      halt
var runningSum = Program{
	3, 100,
	1006, 100, 14,
	1, 101, 100, 101,
	4, 101,
	1106, 0, 0,
	4, 101,
	99,
}

func runAll(prog Program, inputs []int64) (out []int64, image []int64, err error) {
	s, err := Load(prog, 0)
	if err != nil {
		return nil, nil, err
	}
	out, err = s.Run(context.Background(), inputs...)
	return out, s.Image(), err
}

func Test_Session_properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	terminated := func(values []int64) []int64 {
		return append(append([]int64(nil), values...), 0)
	}

	properties.Property("same program and input yield same output and memory", prop.ForAll(
		func(values []int64) bool {
			inputs := terminated(values)
			out1, mem1, err1 := runAll(runningSum, inputs)
			out2, mem2, err2 := runAll(runningSum, inputs)
			if err1 != nil || err2 != nil || len(out1) != len(out2) || len(mem1) != len(mem2) {
				return false
			}
			for i := range out1 {
				if out1[i] != out2[i] {
					return false
				}
			}
			for i := range mem1 {
				if mem1[i] != mem2[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(1, 1<<40)),
	))

	properties.Property("outputs running sums", prop.ForAll(
		func(values []int64) bool {
			out, _, err := runAll(runningSum, terminated(values))
			if err != nil || len(out) != len(values)+1 {
				return false
			}
			var sum int64
			for i, val := range values {
				sum += val
				if out[i] != sum {
					return false
				}
			}
			return out[len(values)] == sum
		},
		gen.SliceOf(gen.Int64Range(-1<<40, -1)),
	))

	properties.Property("add of immediates matches native addition", prop.ForAll(
		func(a, b int64) bool {
			// add a, b, [7]; out [7]; halt
			out, _, err := runAll(Program{1101, a, b, 7, 4, 7, 99, 0}, nil)
			return err == nil && len(out) == 1 && out[0] == a+b
		},
		gen.Int64Range(-1<<30, 1<<30),
		gen.Int64Range(-1<<30, 1<<30),
	))

	properties.TestingRun(t)
}
