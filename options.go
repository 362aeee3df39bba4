package intcode

import "github.com/jcorbin/intcode/internal/mem"

// SessionOption customizes a Session as it is loaded.
type SessionOption interface{ apply(s *Session) }

// SessionOptions combines any number of options into one, applied in order.
func SessionOptions(opts ...SessionOption) SessionOption {
	var res sessionOptions
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case sessionOptions:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

// WithLogf enables instruction tracing through the given printf-style function.
func WithLogf(logfn func(mess string, args ...interface{})) SessionOption {
	return withLogfn(logfn)
}

// WithName names the session in trace logs and dumps.
func WithName(name string) SessionOption { return nameOption(name) }

// WithMemLimit bounds addressable memory: any address at or beyond limit
// fails with an AddressError. Zero means unbounded.
func WithMemLimit(limit uint) SessionOption { return memLimitOption(limit) }

// WithPageSize sets the memory page allocation size.
func WithPageSize(size uint) SessionOption { return pageSizeOption(size) }

// WithInput queues input values ahead of need.
func WithInput(values ...int64) SessionOption { return inputOption(values) }

type sessionOptions []SessionOption
type withLogfn func(mess string, args ...interface{})
type nameOption string
type memLimitOption uint
type pageSizeOption uint
type inputOption []int64

func (opts sessionOptions) apply(s *Session) {
	for _, opt := range opts {
		opt.apply(s)
	}
}

func (logfn withLogfn) apply(s *Session)     { s.logfn = logfn }
func (lim memLimitOption) apply(s *Session)  { s.mem.Limit = uint(lim) }
func (size pageSizeOption) apply(s *Session) { s.mem.PageSize = uint(size) }
func (in inputOption) apply(s *Session)      { s.queue = append(s.queue, in...) }

var defaultOptions = SessionOptions(
	pageSizeOption(mem.DefaultPageSize),
)

func (name nameOption) apply(s *Session) {
	s.name = string(name)
	s.setLogName(s.name)
}
