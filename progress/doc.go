// Package progress defines the aggregated counters the simulator keeps about
// its scheduling activity (processes created, completed, killed, ticks
// executed, …) and a tracker that applies incremental updates to them.
package progress
