// Package diag defines the diagnostic model shared by all pipeline phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records of the problems found by the
//     lexer, the parser and the internal consistency checks of later stages.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning, Error (severity.go).
//   - Code – compact numeric identifier (codes.go) with a stable string ID
//     such as LEX1001 or SYN2003.
//   - Message – short, actionable text.
//   - Primary – the source.Span the problem points at.
//   - Notes – optional secondary spans (e.g. "call opened here").
//
// # Fail-fast pipeline
//
// The compiler stops at the first error, so a Bag normally holds at most one
// error per compiled file. Bag still supports limits, sorting and merging so
// that directory builds can aggregate the results of many files.
package diag
