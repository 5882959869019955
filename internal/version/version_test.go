package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColored_Plain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	if got := Colored(false); got != "1.2.3-rc.1" {
		t.Errorf("Colored(false) = %q", got)
	}
}

func TestColored_KeepsDigitsAndSuffix(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-rc.1"
	got := Colored(true)
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Colored(true) = %q, want ANSI sequences", got)
	}
	if !strings.HasSuffix(got, "-rc.1") {
		t.Errorf("Colored(true) = %q, want -rc.1 suffix", got)
	}
	for _, digit := range []string{"1", "2", "3"} {
		if !strings.Contains(got, digit) {
			t.Errorf("Colored(true) = %q lost %s", got, digit)
		}
	}
}

func TestColored_NonSemver(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "nightly"
	if got := Colored(true); got != "nightly" {
		t.Errorf("Colored(true) = %q", got)
	}
}
