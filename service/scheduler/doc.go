// Package scheduler owns the ready queue, the blocked set and the running
// slot, and is the only service allowed to mutate live processes. One tick
// grants a single quantum to the head of the ready queue, decides its next
// state and advances the I/O wait of every blocked process.
package scheduler
