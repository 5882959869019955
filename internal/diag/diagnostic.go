package diag

import (
	"srcmap/internal/source"
)

// Note is secondary context attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     string // stable identifier, e.g. "W0001"
	Message  string
	Primary  source.Span
	Notes    []Note
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}
