package host_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/jcorbin/intcode"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	// scaleProg outputs 10 * signal + phase.
	scaleProg = intcode.Program{3, 15, 3, 16, 1002, 16, 10, 16, 1, 16, 15, 15, 4, 15, 99, 0, 0}

	// loopProg doubles its signal plus a countdown for five rounds, for use in
	// a feedback loop with phases 5-9.
	loopProg = intcode.Program{
		3, 26, 1001, 26, -4, 26, 3, 27, 1002, 27, 2, 27, 1, 27, 26,
		27, 4, 27, 1001, 28, -1, 28, 1005, 28, 6, 99, 0, 0, 5,
	}
)

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}
