package diag

import (
	"testing"

	"srcmap/internal/source"
)

func TestBagSortAndLimit(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}

	ReportInfo(r, "I1", source.Span{File: 2, Offset: 0}, "later file")
	ReportWarning(r, "W1", source.Span{File: 1, Offset: 10}, "warn")
	ReportError(r, "E1", source.Span{File: 1, Offset: 10}, "err")
	ReportError(r, "E2", source.Span{File: 1, Offset: 0}, "dropped")

	if bag.Len() != 3 {
		t.Fatalf("Len = %d, want 3", bag.Len())
	}
	bag.Sort()

	var codes []string
	for _, d := range bag.Items() {
		codes = append(codes, d.Code)
	}
	want := []string{"E1", "W1", "I1"}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("order = %v, want %v", codes, want)
		}
	}
	if !bag.HasErrors() || bag.Count(SevWarning) != 1 {
		t.Errorf("HasErrors=%v Count(warning)=%d", bag.HasErrors(), bag.Count(SevWarning))
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := Diagnostic{Notes: make([]Note, 1, 4)}
	a := base.WithNote(source.Span{Offset: 1}, "a")
	b := base.WithNote(source.Span{Offset: 2}, "b")
	if a.Notes[1].Msg != "a" || b.Notes[1].Msg != "b" {
		t.Errorf("notes aliased: %v / %v", a.Notes, b.Notes)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, sev := range []Severity{SevInfo, SevWarning, SevError} {
		got, err := ParseSeverity(sev.String())
		if err != nil || got != sev {
			t.Errorf("ParseSeverity(%q) = %v, %v", sev.String(), got, err)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("expected error for unknown severity")
	}
}
