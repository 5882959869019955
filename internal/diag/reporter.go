package diag

import "srcmap/internal/source"

// Reporter — минимальный контракт получения диагностик.
type Reporter interface {
	Report(d Diagnostic)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code string, primary source.Span, msg string) {
	report(r, SevError, code, primary, msg)
}

// ReportWarning is a shortcut for SevWarning diagnostics.
func ReportWarning(r Reporter, code string, primary source.Span, msg string) {
	report(r, SevWarning, code, primary, msg)
}

// ReportInfo is a shortcut for SevInfo diagnostics.
func ReportInfo(r Reporter, code string, primary source.Span, msg string) {
	report(r, SevInfo, code, primary, msg)
}

func report(r Reporter, sev Severity, code string, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{Severity: sev, Code: code, Message: msg, Primary: primary})
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}
