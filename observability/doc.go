// Package observability defines the tracing, metrics and logging interfaces
// the client emits to, plus context plumbing and shared attribute names.
//
// The client takes any [Provider]; the slogobs subpackage offers a
// dependency-free slog implementation and otelobs bridges to OpenTelemetry.
package observability
