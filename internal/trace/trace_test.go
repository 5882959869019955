package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeError, false},
		{LevelError, ScopeError, true},
		{LevelError, ScopeSession, false},
		{LevelPhase, ScopeSession, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeQuery, false},
		{LevelDebug, ScopeQuery, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel(""); err != nil || l != LevelOff {
		t.Fatalf("ParseLevel(\"\") = %v, %v", l, err)
	}
	if l, err := ParseLevel("Detail"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(Detail) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	Point(tr, ScopeSession, "session", "/work", map[string]string{"mounts": "2", "a": "b"})
	Point(tr, ScopeFile, "load", "skipped", nil)
	span := Begin(tr, ScopeSession, "check", 0)
	span.WithExtra("diagnostics", "3").End("")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "• session (/work) {a=b, mounts=2}") {
		t.Errorf("point line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "→ check") || !strings.HasSuffix(lines[2], "← check {diagnostics=3}") {
		t.Errorf("span lines = %q / %q", lines[1], lines[2])
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelError, FormatNDJSON)
	Errorf(tr, "load", "%s: missing", "a.sw")

	var ev map[string]any
	if err := json.Unmarshal(buf.Bytes(), &ev); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if ev["scope"] != "error" || ev["detail"] != "a.sw: missing" || ev["kind"] != "point" {
		t.Errorf("event = %v", ev)
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tr.Enabled() {
		t.Error("off tracer should be disabled")
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Error("empty context should give Nop")
	}
	tr := NewStreamTracer(&bytes.Buffer{}, LevelDebug, FormatText)
	if FromContext(WithTracer(context.Background(), tr)) != tr {
		t.Error("tracer not found in context")
	}
}
