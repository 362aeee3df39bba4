// Command intcode loads and runs intcode programs.
//
// Usage:
//
//	intcode [flags] program.txt [input files...]
//
// In run mode, input values come from -values or stdin, and each output is
// printed on its own line. In ascii mode, the program reads text from the
// input files (or stdin) and writes text to stdout. Amplify and network
// modes compose several copies of the program; dump prints a disassembly.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jcorbin/intcode"
	"github.com/jcorbin/intcode/host"
	"github.com/jcorbin/intcode/internal/flushio"
	"github.com/jcorbin/intcode/internal/logio"
	"github.com/jcorbin/intcode/internal/panicerr"
)

func main() {
	log := &logio.Logger{Output: os.Stderr}
	log.ErrorIf(panicerr.Recover("intcode", func() error {
		cmd := command{
			log:    log,
			stdin:  os.Stdin,
			stdout: flushio.NewWriteFlusher(os.Stdout),
		}
		return cmd.main(context.Background(), os.Args[1:])
	}))
	os.Exit(log.ExitCode())
}

type command struct {
	Config
	log    *logio.Logger
	stdin  io.Reader
	stdout flushio.WriteFlusher
}

func (cmd *command) main(ctx context.Context, args []string) (rerr error) {
	cfg, err := parseConfig("intcode", args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	} else if err != nil {
		return err
	}
	cmd.Config = cfg
	cmd.log.Color = cfg.Color

	if cfg.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	defer func() {
		if err := cmd.stdout.Flush(); rerr == nil {
			rerr = err
		}
	}()

	switch cfg.Mode {
	case "run":
		return cmd.run(ctx)
	case "ascii":
		return cmd.ascii(ctx)
	case "amplify":
		return cmd.amplify(ctx)
	case "network":
		return cmd.network(ctx)
	case "dump":
		s, err := cmd.session()
		if err != nil {
			return err
		}
		return s.Dump(cmd.stdout)
	}
	return fmt.Errorf("unknown mode %q", cfg.Mode)
}

func (cmd *command) tracef() func(mess string, args ...interface{}) {
	if !cmd.Trace {
		return nil
	}
	return cmd.log.Leveledf("TRACE")
}

func (cmd *command) sessionOptions() []intcode.SessionOption {
	var opts []intcode.SessionOption
	if logfn := cmd.tracef(); logfn != nil {
		opts = append(opts, intcode.WithLogf(logfn))
	}
	if cmd.MemLimit != 0 {
		opts = append(opts, intcode.WithMemLimit(cmd.MemLimit))
	}
	return opts
}

func (cmd *command) hostOptions() []host.Option {
	return []host.Option{
		host.WithLogf(cmd.tracef()),
		host.WithPadding(cmd.Padding),
		host.WithSessionOptions(cmd.sessionOptions()...),
	}
}

// session loads the program, or restores the -resume snapshot.
func (cmd *command) session() (*intcode.Session, error) {
	if cmd.Resume != "" {
		data, err := os.ReadFile(cmd.Resume)
		if err != nil {
			return nil, err
		}
		return intcode.RestoreSession(data, cmd.sessionOptions()...)
	}
	prog, err := intcode.LoadProgramFile(cmd.Program)
	if err != nil {
		return nil, err
	}
	opts := append([]intcode.SessionOption{intcode.WithName(cmd.Program)}, cmd.sessionOptions()...)
	return intcode.Load(prog, cmd.Padding, opts...)
}

// suspend saves a snapshot of a session waiting for input, if -save was
// given; otherwise running out of input is an error.
func (cmd *command) suspend(s *intcode.Session) error {
	if cmd.Save == "" {
		return intcode.StarvedInputError{IP: s.IP()}
	}
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Save, data, 0o644); err != nil {
		return err
	}
	cmd.log.Printf("INFO", "suspended @%v after %v steps; saved %v", s.IP(), s.Steps(), cmd.Save)
	return nil
}

func (cmd *command) fault(s *intcode.Session, err error) error {
	if cmd.Trace && s.Err() != nil {
		lw := &logio.Writer{Logf: cmd.log.Leveledf("DUMP")}
		cmd.log.ErrorIf(s.Dump(lw))
		cmd.log.ErrorIf(lw.Close())
	}
	return err
}

func (cmd *command) run(ctx context.Context) error {
	s, err := cmd.session()
	if err != nil {
		return err
	}

	inputs := cmd.Values
	if len(inputs) == 0 {
		data, err := io.ReadAll(cmd.stdin)
		if err != nil {
			return err
		}
		if inputs, err = parseValues(string(data)); err != nil {
			return err
		}
	}
	s.Queue(inputs...)
	if s.AwaitingInput() {
		return cmd.suspend(s)
	}

	outputs, res, err := s.RunUntilInput(ctx)
	for _, out := range outputs {
		fmt.Fprintln(cmd.stdout, out)
	}
	if err != nil {
		return cmd.fault(s, err)
	}
	if res.Signal == intcode.NeedsInput {
		return cmd.suspend(s)
	}
	return nil
}

func (cmd *command) ascii(ctx context.Context) error {
	s, err := cmd.session()
	if err != nil {
		return err
	}

	var inputs []io.Reader
	for _, name := range cmd.Inputs {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		inputs = append(inputs, f)
	}
	if len(inputs) == 0 {
		inputs = append(inputs, cmd.stdin)
	}

	tx := host.NewText(s, cmd.stdout, inputs, host.WithLogf(cmd.tracef()))
	err = tx.Run(ctx)
	for _, result := range tx.Results {
		fmt.Fprintf(cmd.stdout, "\n%v", result)
	}
	if len(tx.Results) > 0 {
		fmt.Fprintln(cmd.stdout)
	}
	if errors.Is(err, host.ErrInputExhausted) && cmd.Save != "" {
		return cmd.suspend(s)
	} else if err != nil {
		return cmd.fault(s, err)
	}
	return nil
}

func (cmd *command) amplify(ctx context.Context) error {
	prog, err := intcode.LoadProgramFile(cmd.Program)
	if err != nil {
		return err
	}
	amp := cmd.Amplify
	if amp.Search {
		best, err := host.MaxSignal(ctx, prog, amp.Phases, amp.Feedback, amp.Signal, cmd.hostOptions()...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.stdout, "%v phases:%v\n", best.Signal, values(best.Phases))
		return nil
	}
	amps, err := host.NewAmplifiers(prog, amp.Phases, amp.Feedback, cmd.hostOptions()...)
	if err != nil {
		return err
	}
	signal, err := amps.Run(ctx, amp.Signal)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.stdout, signal)
	return nil
}

func (cmd *command) network(ctx context.Context) error {
	prog, err := intcode.LoadProgramFile(cmd.Program)
	if err != nil {
		return err
	}
	var (
		nat    host.NAT
		mon    host.Monitor
		policy host.IdlePolicy = &mon
	)
	if cmd.Network.NAT {
		policy = &nat
	}
	net, err := host.NewNetwork(prog, cmd.Network.Nodes, policy, cmd.hostOptions()...)
	if err != nil {
		return err
	}
	if err := net.Run(ctx); err != nil {
		return err
	}
	if cmd.Network.NAT {
		fmt.Fprintf(cmd.stdout, "first:%v repeated:%v rounds:%v\n", nat.First, nat.Repeated, net.Rounds())
	} else {
		fmt.Fprintf(cmd.stdout, "packet:%v rounds:%v\n", mon.Packet, net.Rounds())
	}
	return nil
}
