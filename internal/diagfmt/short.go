package diagfmt

import (
	"fmt"
	"sort"
	"strings"

	"srcmap/internal/diag"
	"srcmap/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// Short renders diagnostics one per line, sorted by path, position,
// severity, code and message:
//
//	warning W0002 src/main.sw:3:14 trailing whitespace
//
// The output is stable enough for golden files. Unresolvable spans are skipped.
func Short(bag *diag.Bag, lookup source.SourceLookup, includeNotes bool) string {
	if bag == nil || bag.Len() == 0 {
		return ""
	}

	rendered := make([]shortDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		if info, err := lookup.Line(d.Primary); err == nil {
			rendered = append(rendered, shortDiagnostic{
				Severity: d.Severity.String(),
				Code:     d.Code,
				Path:     info.RelativeFileName,
				Line:     info.Row,
				Column:   info.Col,
				Message:  sanitizeMessage(d.Message),
			})
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			info, err := lookup.Line(n.Span)
			if err != nil {
				continue
			}
			rendered = append(rendered, shortDiagnostic{
				Severity: "note",
				Code:     d.Code,
				Path:     info.RelativeFileName,
				Line:     info.Row,
				Column:   info.Col,
				Message:  sanitizeMessage(n.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
