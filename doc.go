// Package procsim simulates a single-CPU round-robin process scheduler.
//
// The simulator admits processes with a burst time, a memory footprint and an
// optional I/O window, grants each one quantum per tick in FIFO order and
// reclaims memory once a process finishes or is killed.  It comes with
// pluggable service layers such as:
//
//   - scheduler: the tick loop, ready queue and blocked set
//   - allocator: bump memory accounting
//   - event: optional lifecycle event stream
//   - tracing: OpenTelemetry spans around command operations
//
// End-users typically interact with the simulator via the high-level Service
// façade exposed by the root package:
//
//	srv, _ := procsim.New(procsim.WithMemoryCapacity(1 << 20))
//	rt := srv.Runtime()
//	_ = rt.Start(ctx)
//	pid, _ := rt.CreateProcess(ctx, process.NewSpec(10, 100).WithIO(3, 6))
//	list, _ := rt.ListProcesses(ctx)
//	_ = rt.Shutdown(ctx)
package procsim
