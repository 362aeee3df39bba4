package host

import "github.com/jcorbin/intcode"

// Option configures a host adapter.
type Option interface{ apply(*config) }

type config struct {
	logging
	sessionOpts []intcode.SessionOption
	padding     int
}

// Options combines any number of options into one.
func Options(opts ...Option) Option {
	var flat options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			flat = append(flat, impl...)
		default:
			flat = append(flat, opt)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return flat
}

// WithLogf sets a function to trace scheduling decisions: deliveries,
// suspensions and halts.
func WithLogf(logfn func(mess string, args ...interface{})) Option {
	return withLogfn(logfn)
}

// WithSessionOptions passes options through to every session an adapter
// loads.
func WithSessionOptions(opts ...intcode.SessionOption) Option {
	return sessionOptions(opts)
}

// WithPadding sets the extra padding passed to intcode.Load.
func WithPadding(words int) Option { return paddingOption(words) }

type options []Option
type withLogfn func(mess string, args ...interface{})
type sessionOptions []intcode.SessionOption
type paddingOption int

func (opts options) apply(conf *config) {
	for _, opt := range opts {
		opt.apply(conf)
	}
}

func (logfn withLogfn) apply(conf *config)     { conf.logfn = logfn }
func (opts sessionOptions) apply(conf *config) { conf.sessionOpts = append(conf.sessionOpts, opts...) }
func (words paddingOption) apply(conf *config) { conf.padding = int(words) }

func newConfig(opts []Option) config {
	var conf config
	Options(opts...).apply(&conf)
	return conf
}

func (conf config) load(prog intcode.Program, name string, extra ...intcode.SessionOption) (*intcode.Session, error) {
	opts := make([]intcode.SessionOption, 0, 1+len(conf.sessionOpts)+len(extra))
	opts = append(opts, intcode.WithName(name))
	opts = append(opts, conf.sessionOpts...)
	opts = append(opts, extra...)
	return intcode.Load(prog, conf.padding, opts...)
}

type logging struct {
	logfn func(mess string, args ...interface{})
}

func (log logging) logf(mess string, args ...interface{}) {
	if log.logfn != nil {
		log.logfn(mess, args...)
	}
}
