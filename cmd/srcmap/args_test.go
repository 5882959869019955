package main

import (
	"testing"

	"srcmap/internal/source"
)

func TestParseMountFlag(t *testing.T) {
	cases := []struct {
		input   string
		want    source.Mount
		wantErr bool
	}{
		{"crate=src", source.Mount{Name: "crate", Path: "src"}, false},
		{" std = /usr/lib/std ", source.Mount{Name: "std", Path: "/usr/lib/std"}, false},
		{"a=b=c", source.Mount{Name: "a", Path: "b=c"}, false},
		{"crate", source.Mount{}, true},
		{"=src", source.Mount{}, true},
		{"crate=", source.Mount{}, true},
	}
	for _, tc := range cases {
		got, err := parseMountFlag(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseMountFlag(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseMountFlag(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("parseMountFlag(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}

func TestParseFileArg(t *testing.T) {
	mount, rel, err := parseFileArg("crate:dir/main.sw")
	if err != nil || mount != "crate" || rel != "dir/main.sw" {
		t.Fatalf("parseFileArg = %q, %q, %v", mount, rel, err)
	}
	for _, bad := range []string{"main.sw", ":main.sw", "crate:"} {
		if _, _, err := parseFileArg(bad); err == nil {
			t.Errorf("parseFileArg(%q) expected error", bad)
		}
	}
}

func TestParseUint32(t *testing.T) {
	if v, err := parseUint32("offset", "42"); err != nil || v != 42 {
		t.Fatalf("parseUint32 = %d, %v", v, err)
	}
	for _, bad := range []string{"-1", "x", "4294967296"} {
		if _, err := parseUint32("offset", bad); err == nil {
			t.Errorf("parseUint32(%q) expected error", bad)
		}
	}
}
