// Package trace records what the compiler is doing while it runs.
//
// Spans are opened around the driver, every pipeline pass (lex, parse,
// lower, emit) and every file of a directory build:
//
//	lispc compile --trace=- --trace-level=phase main.lisp
//
// Implementations:
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes events as they happen (text or NDJSON)
//   - RingTracer: keeps the last N events in memory and dumps them on failure
//
// Levels select which scopes are emitted: phase covers driver and pass
// spans, detail adds per-file spans, debug adds node events.
//
// Every event carries the source file it belongs to, so interleaved output
// from a parallel build can still be told apart. Tracers and the enclosing
// span travel in a context.Context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
package trace
