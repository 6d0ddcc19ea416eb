// Package process defines the process control record used by the simulator:
// the entity itself, its closed lifecycle state enumeration and the queue
// membership tag the scheduler keeps for O(1) removal.
package process
