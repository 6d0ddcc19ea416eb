package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
)

type fakeCommander struct {
	nextPID   int
	used      int
	total     int
	processes map[int]process.Summary
	states    []process.State
	created   []process.Spec
}

func newFakeCommander(total int) *fakeCommander {
	return &fakeCommander{nextPID: 1, total: total, processes: map[int]process.Summary{}}
}

func (f *fakeCommander) CreateProcess(_ context.Context, spec process.Spec) (int, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if spec.MemorySize > f.total-f.used {
		return 0, fmt.Errorf("create: %w", allocator.ErrOutOfMemory)
	}
	pid := f.nextPID
	f.nextPID++
	f.processes[pid] = process.Summary{ID: pid, State: process.StateReady, BurstTime: spec.BurstTime, MemorySize: spec.MemorySize, MemoryAddress: f.used}
	f.used += spec.MemorySize
	f.created = append(f.created, spec)
	return pid, nil
}

func (f *fakeCommander) KillProcess(_ context.Context, pid int) error {
	summary, ok := f.processes[pid]
	if !ok {
		return fmt.Errorf("%w: %v", dao.ErrNotFound, pid)
	}
	f.used -= summary.MemorySize
	delete(f.processes, pid)
	return nil
}

func (f *fakeCommander) ListProcesses(_ context.Context, states ...process.State) ([]process.Summary, error) {
	f.states = states
	var ret []process.Summary
	for pid := 1; pid < f.nextPID; pid++ {
		if summary, ok := f.processes[pid]; ok {
			ret = append(ret, summary)
		}
	}
	return ret, nil
}

func (f *fakeCommander) MemoryStatus(context.Context) allocator.Status {
	return allocator.Status{Used: f.used, Total: f.total}
}

func (f *fakeCommander) Stats() progress.Counters {
	return progress.Counters{Created: len(f.created), Ticks: 12, IdleTicks: 2, OutOfMemory: 1, EventsDropped: 3}
}

func TestShell_Execute(t *testing.T) {
	testCases := []struct {
		description string
		lines       []string
		expect      []string
		expectExit  bool
	}{
		{
			description: "create then memory",
			lines:       []string{"createproc 10 100 -1 -1", "mem"},
			expect:      []string{"Process created with PID 1", "Memory usage: 100 bytes out of 1000 bytes"},
		},
		{
			description: "out of memory",
			lines:       []string{"createproc 10 2000 -1 -1"},
			expect:      []string{"Not enough memory to create process."},
		},
		{
			description: "invalid io window",
			lines:       []string{"createproc 5 10 3 9"},
			expect:      []string{"Invalid process:"},
		},
		{
			description: "wrong argument count",
			lines:       []string{"createproc 5 10"},
			expect:      []string{"Invalid createproc command format."},
		},
		{
			description: "kill",
			lines:       []string{"createproc 10 100 -1 -1", "killproc 1", "killproc 99"},
			expect:      []string{"Process with PID 1 terminated.", "No process found with PID 99."},
		},
		{
			description: "kill without pid",
			lines:       []string{"killproc"},
			expect:      []string{"Invalid killproc command format. Expected: killproc PID"},
		},
		{
			description: "list",
			lines:       []string{"createproc 10 100 3 6", "psproc"},
			expect:      []string{"-------- TOP --------", "1    Ready  0/10     100     0", "-------- BOTTOM --------"},
		},
		{
			description: "list with bad filter",
			lines:       []string{"psproc sleeping"},
			expect:      []string{`Invalid psproc filter "sleeping"`},
		},
		{
			description: "stats",
			lines:       []string{"stats"},
			expect:      []string{"Ticks: 12 (idle 2)", "Out of memory: 1", "Live: 0", "Events dropped: 3"},
		},
		{
			description: "unknown",
			lines:       []string{"format c:"},
			expect:      []string{"Invalid command"},
		},
		{
			description: "exit",
			lines:       []string{"EXIT"},
			expectExit:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := &bytes.Buffer{}
			srv := New(newFakeCommander(1000), strings.NewReader(""), out, nil)
			var exited bool
			for _, line := range tc.lines {
				exited = srv.Execute(context.Background(), line)
			}
			assert.Equal(t, tc.expectExit, exited)
			for _, fragment := range tc.expect {
				assert.Contains(t, out.String(), fragment)
			}
		})
	}
}

func TestShell_ListFilter(t *testing.T) {
	commander := newFakeCommander(1000)
	srv := New(commander, strings.NewReader(""), &bytes.Buffer{}, nil)
	srv.Execute(context.Background(), "psproc blocked ready")
	assert.Equal(t, []process.State{process.StateBlocked, process.StateReady}, commander.states)
}

func TestShell_Run(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      []string
	}{
		{
			description: "exit command",
			input:       "createproc 4 10 1 2\nexit\nmem\n",
			expect:      []string{"Welcome to the OS Simulator!", "Process created with PID 1", "Exiting the simulator."},
		},
		{
			description: "end of input",
			input:       "mem\n",
			expect:      []string{"Enter command: Memory usage: 0 bytes out of 1000 bytes"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			out := &bytes.Buffer{}
			commander := newFakeCommander(1000)
			srv := New(commander, strings.NewReader(tc.input), out, nil)
			require.NoError(t, srv.Run(context.Background()))
			for _, fragment := range tc.expect {
				assert.Contains(t, out.String(), fragment)
			}
			assert.NotContains(t, out.String(), "Memory usage: 10 bytes")
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestShell_RunReadError(t *testing.T) {
	srv := New(newFakeCommander(10), failingReader{}, &bytes.Buffer{}, nil)
	assert.EqualError(t, srv.Run(context.Background()), "broken pipe")
}
