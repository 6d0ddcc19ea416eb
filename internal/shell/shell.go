// Package shell implements the interactive text front end of the simulator.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/tracing"
)

const (
	welcome = "Welcome to the OS Simulator!"
	prompt  = "Enter command: "
	usage   = "Available commands: createproc, killproc, psproc, mem, stats, help, exit"
)

// Commander is the command API driven by the shell
type Commander interface {
	CreateProcess(ctx context.Context, spec process.Spec) (int, error)
	KillProcess(ctx context.Context, pid int) error
	ListProcesses(ctx context.Context, states ...process.State) ([]process.Summary, error)
	MemoryStatus(ctx context.Context) allocator.Status
	Stats() progress.Counters
}

// Shell reads command lines and writes their results
type Shell struct {
	commander Commander
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger
}

// New creates a shell; a nil logger uses slog.Default
func New(commander Commander, in io.Reader, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{commander: commander, in: in, out: out, logger: logger}
}

// Run processes lines until exit, end of input or ctx is done
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	fmt.Fprintln(s.out, welcome)
	for {
		fmt.Fprint(s.out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			if done := s.Execute(ctx, line); done {
				fmt.Fprintln(s.out, "Exiting the simulator.")
				return nil
			}
		}
	}
}

// Execute runs a single command line and reports whether the shell should exit
func (s *Shell) Execute(ctx context.Context, line string) bool {
	command, err := Parse(line)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid command: %v\n", err)
		return false
	}
	if command == nil {
		return false
	}
	ctx, span := tracing.StartSpan(ctx, "shell."+command.Name, "SERVER")
	span.WithAttributes(map[string]string{"command.line": strings.TrimSpace(line)})
	err = s.dispatch(ctx, command)
	tracing.EndSpan(span, err)
	if errors.Is(err, errExit) {
		return true
	}
	if err != nil {
		s.logger.Debug("command failed", slog.String("command", command.Name), slog.Any("error", err))
	}
	return false
}

var errExit = errors.New("exit")

func (s *Shell) dispatch(ctx context.Context, command *Command) error {
	switch command.Name {
	case "createproc":
		return s.createProcess(ctx, command)
	case "killproc":
		return s.killProcess(ctx, command)
	case "psproc":
		return s.listProcesses(ctx, command)
	case "mem":
		status := s.commander.MemoryStatus(ctx)
		fmt.Fprintf(s.out, "Memory usage: %d bytes out of %d bytes\n", status.Used, status.Total)
	case "stats":
		s.printStats(s.commander.Stats())
	case "help":
		fmt.Fprintln(s.out, usage)
		fmt.Fprintln(s.out, "  createproc burstTime memorySize ioStartTime ioEndTime (-1 -1 for no I/O)")
		fmt.Fprintln(s.out, "  killproc PID")
		fmt.Fprintln(s.out, "  psproc [ready|running|blocked]")
	case "exit", "quit":
		return errExit
	default:
		fmt.Fprintln(s.out, "Invalid command. "+usage)
		return fmt.Errorf("%w: unknown command %v", ErrInvalidArgument, command.Name)
	}
	return nil
}

func (s *Shell) createProcess(ctx context.Context, command *Command) error {
	args, err := command.Ints(4)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid createproc command format. Expected: createproc burstTime memorySize ioStartTime ioEndTime")
		return err
	}
	spec := process.NewSpec(args[0], args[1]).WithIO(args[2], args[3])
	pid, err := s.commander.CreateProcess(ctx, spec)
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "Process created with PID %d\n", pid)
	case errors.Is(err, allocator.ErrOutOfMemory):
		fmt.Fprintln(s.out, "Not enough memory to create process.")
	case errors.Is(err, process.ErrInvalidArgument):
		fmt.Fprintf(s.out, "Invalid process: %v\n", err)
	default:
		fmt.Fprintf(s.out, "Failed to create process: %v\n", err)
	}
	return err
}

func (s *Shell) killProcess(ctx context.Context, command *Command) error {
	args, err := command.Ints(1)
	if err != nil {
		fmt.Fprintln(s.out, "Invalid killproc command format. Expected: killproc PID")
		return err
	}
	pid := args[0]
	err = s.commander.KillProcess(ctx, pid)
	switch {
	case err == nil:
		fmt.Fprintf(s.out, "Process with PID %d terminated.\n", pid)
	case errors.Is(err, dao.ErrNotFound):
		fmt.Fprintf(s.out, "No process found with PID %d.\n", pid)
	default:
		fmt.Fprintf(s.out, "Failed to kill process %d: %v\n", pid, err)
	}
	return err
}

func (s *Shell) listProcesses(ctx context.Context, command *Command) error {
	var states []process.State
	for _, arg := range command.Args {
		state, err := process.ParseState(arg.Text)
		if err != nil {
			fmt.Fprintf(s.out, "Invalid psproc filter %q. Expected: psproc [ready|running|blocked]\n", arg.Text)
			return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		states = append(states, state)
	}
	summaries, err := s.commander.ListProcesses(ctx, states...)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to list processes: %v\n", err)
		return err
	}
	fmt.Fprintln(s.out, "All processes:")
	fmt.Fprintln(s.out, "-------- TOP --------")
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tSTATE\tRUNTIME\tMEMORY\tADDRESS")
	for _, summary := range summaries {
		fmt.Fprintf(w, "%d\t%v\t%d/%d\t%d\t%d\n", summary.ID, summary.State, summary.Runtime, summary.BurstTime, summary.MemorySize, summary.MemoryAddress)
	}
	_ = w.Flush()
	fmt.Fprintln(s.out, "-------- BOTTOM --------")
	return nil
}

func (s *Shell) printStats(counters progress.Counters) {
	var b strings.Builder
	fmt.Fprintf(&b, "Ticks: %d (idle %d)\n", counters.Ticks, counters.IdleTicks)
	fmt.Fprintf(&b, "Created: %d, Completed: %d, Killed: %d, Out of memory: %d, Live: %d\n",
		counters.Created, counters.Completed, counters.Killed, counters.OutOfMemory, counters.Live())
	fmt.Fprintf(&b, "Blocked: %d, Unblocked: %d\n", counters.Blocked, counters.Unblocked)
	fmt.Fprintf(&b, "Events dropped: %d\n", counters.EventsDropped)
	fmt.Fprint(s.out, b.String())
}
