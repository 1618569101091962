// Package trace records generation phases as spans so slow or stuck runs of
// bridgegen can be diagnosed.
//
// Spans nest by scope: one run span, one span per phase (load, export, plan,
// emit, write), one span per unit and, at debug level, one span per exported
// element.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "export", parent)
//	defer span.End("")
//
// Stream tracers write text, NDJSON or Chrome trace JSON. Ring tracers keep
// the last events in memory and are dumped when a run fails.
package trace
