// Package diag defines the diagnostic model shared by the graph loader and
// the export generator.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while loading a declaration graph or building the export scope tree.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Subject – the qualified declaration (or graph path) the finding is about.
//   - Notes – optional secondary subjects/messages for additional context.
//
// Eligibility filtering is not an error path: declarations that cannot be
// exported are skipped silently. Only inputs that the generator cannot
// interpret at all (malformed graph entries, unknown type expressions) are
// reported, and only error-severity entries stop a generation run.
package diag
