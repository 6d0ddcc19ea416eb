// Package allocator keeps the memory bookkeeping of the simulator. It is a
// bump allocator: a reservation is placed at the current usage offset and a
// release only shrinks the counter, freed ranges are never reused.
package allocator
