package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestColoredKeepsText(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	orig := Version
	t.Cleanup(func() { Version = orig })

	tests := []struct{ in, want string }{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"2", "2"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Fatalf("Colored(%q) = %q", tt.in, got)
		}
	}
}

func TestLineIncludesBuildMetadata(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit = "abc123def4567890"
	BuildDate = "2026-01-15T10:30:00Z"
	line := Line()
	for _, want := range []string{"bridgegen ", "(abc123def456)", "built 2026-01-15T10:30:00Z"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}

	GitCommit, BuildDate = "", ""
	if strings.Contains(Line(), "(") {
		t.Fatalf("empty metadata must be omitted: %q", Line())
	}
}
