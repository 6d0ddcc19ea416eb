// Package tracing wraps OpenTelemetry so that command API operations can be
// recorded as spans.  Without an installed provider every span is a no-op.
package tracing
