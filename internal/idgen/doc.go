// Package idgen hands out identifiers: a monotonic integer sequence for
// process ids and UUID strings for event and message ids. The UUID generator
// is a variable so tests can stub it.
package idgen
