// Package trace records what the source cache does during a session.
//
// It is the logging layer of srcmap: components emit small structured events
// (mount registered, file loaded, cache hit, index reused) to a Tracer, and the
// CLI decides where they go.
//
// # Usage
//
//	srcmap locate --trace=- --trace-level=detail crate:main.sw 120
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: failures only
//   - LevelPhase: session setup and command boundaries
//   - LevelDetail: per-file events (mounts, loads)
//   - LevelDebug: everything, including cache and index hits
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeSession, "check", 0)
//	defer span.End("")
package trace
