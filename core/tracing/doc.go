// Package tracing wires OpenTelemetry span export over OTLP/HTTP.
//
// Services obtain tracers from the global provider (otel.Tracer), which stays
// a no-op until Setup registers a real one. The Firestore client reports its
// own RPC spans through the same provider.
package tracing
