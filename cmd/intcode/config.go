package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config collects every setting of the command; it may be loaded from a
// TOML file given by -config, with any flags overriding the file.
type Config struct {
	Mode     string        `toml:"mode"`
	Program  string        `toml:"program"`
	Timeout  time.Duration `toml:"timeout"`
	Trace    bool          `toml:"trace"`
	Color    bool          `toml:"color"`
	MemLimit uint          `toml:"mem-limit"`
	Padding  int           `toml:"padding"`

	Values values   `toml:"values"`
	Inputs []string `toml:"inputs"`

	Save   string `toml:"save"`
	Resume string `toml:"resume"`

	Amplify AmplifyConfig `toml:"amplify"`
	Network NetworkConfig `toml:"network"`
}

// AmplifyConfig configures amplify mode.
type AmplifyConfig struct {
	Phases   values `toml:"phases"`
	Feedback bool   `toml:"feedback"`
	Signal   int64  `toml:"signal"`
	Search   bool   `toml:"search"`
}

// NetworkConfig configures network mode.
type NetworkConfig struct {
	Nodes int  `toml:"nodes"`
	NAT   bool `toml:"nat"`
}

func defaultConfig() Config {
	return Config{
		Mode:    "run",
		Network: NetworkConfig{Nodes: 50},
	}
}

// parseConfig parses command line arguments. When -config names a file,
// it is decoded over the defaults and the arguments are parsed again so
// that flags take precedence.
func parseConfig(name string, args []string) (Config, error) {
	cfg := defaultConfig()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	var configPath string
	fs.StringVar(&configPath, "config", "", "load settings from a TOML file; flags override it")
	cfg.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if configPath != "" {
		if err := cfg.load(configPath); err != nil {
			return cfg, err
		}
		if err := fs.Parse(args); err != nil {
			return cfg, err
		}
	}
	rest := fs.Args()
	if cfg.Program == "" && len(rest) > 0 && cfg.Resume == "" {
		cfg.Program, rest = rest[0], rest[1:]
	}
	cfg.Inputs = append(cfg.Inputs, rest...)
	return cfg, cfg.validate()
}

func (cfg *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "one of run, ascii, amplify, network, or dump")
	fs.StringVar(&cfg.Program, "program", cfg.Program, "program file; defaults to the first argument")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "specify a time limit")
	fs.BoolVar(&cfg.Trace, "trace", cfg.Trace, "enable trace logging")
	fs.BoolVar(&cfg.Color, "color", cfg.Color, "color log levels")
	fs.UintVar(&cfg.MemLimit, "mem-limit", cfg.MemLimit, "enable memory limit, in words")
	fs.IntVar(&cfg.Padding, "padding", cfg.Padding, "extra zero words to allocate past the program")
	fs.Var(&cfg.Values, "values", "comma-separated input values for run mode; read from stdin otherwise")
	fs.StringVar(&cfg.Save, "save", cfg.Save, "save a snapshot here if the program suspends for input")
	fs.StringVar(&cfg.Resume, "resume", cfg.Resume, "resume from a snapshot instead of loading a program")
	fs.Var(&cfg.Amplify.Phases, "phases", "comma-separated amplifier phase settings")
	fs.BoolVar(&cfg.Amplify.Feedback, "feedback", cfg.Amplify.Feedback, "loop the last amplifier back into the first")
	fs.Int64Var(&cfg.Amplify.Signal, "signal", cfg.Amplify.Signal, "initial amplifier signal")
	fs.BoolVar(&cfg.Amplify.Search, "search", cfg.Amplify.Search, "search phase permutations for the largest signal")
	fs.IntVar(&cfg.Network.Nodes, "nodes", cfg.Network.Nodes, "number of network nodes")
	fs.BoolVar(&cfg.Network.NAT, "nat", cfg.Network.NAT, "run a NAT at address 255; otherwise stop at the first packet sent to it")
}

func (cfg *Config) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot read config")
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrapf(err, "parse error in %v", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return errors.Errorf("unknown keys in %v: %v", path, undec)
	}
	return nil
}

func (cfg Config) validate() error {
	switch cfg.Mode {
	case "run", "ascii", "dump":
	case "amplify":
		if len(cfg.Amplify.Phases) == 0 {
			return errors.New("amplify mode needs phases")
		}
	case "network":
		if cfg.Network.Nodes <= 0 {
			return errors.Errorf("invalid node count %v", cfg.Network.Nodes)
		}
	default:
		return errors.Errorf("unknown mode %q", cfg.Mode)
	}
	if cfg.Program == "" && cfg.Resume == "" {
		return errors.New("no program given")
	}
	if cfg.Resume != "" && cfg.Mode != "run" && cfg.Mode != "ascii" && cfg.Mode != "dump" {
		return errors.Errorf("cannot resume in %v mode", cfg.Mode)
	}
	return nil
}

// values is a flag.Value holding comma-separated integers.
type values []int64

func (vs values) String() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func (vs *values) Set(s string) error {
	parsed, err := parseValues(s)
	if err != nil {
		return err
	}
	*vs = parsed
	return nil
}

// parseValues parses integers separated by commas or whitespace.
func parseValues(s string) (values, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
	})
	vs := make(values, 0, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value #%d", i)
		}
		vs = append(vs, v)
	}
	return vs, nil
}
