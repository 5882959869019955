// Package diag defines the diagnostic records that srcmap renders.
//
// A Diagnostic points at a source.Span; resolving that span to a path, row,
// column and line text is the job of the source cache, and printing is the
// job of internal/diagfmt. Package diag itself does no IO.
//
// Producers emit through a Reporter. BagReporter collects into a Bag, which
// can be sorted into a deterministic order (file, offset, severity, code)
// before rendering.
package diag
