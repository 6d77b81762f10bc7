// Package difftest provides the diff-on-mismatch assertion helpers the
// compiler's tests use to compare multi-line outputs (diagnostic listings,
// tree dumps) without drowning the failure log in both full texts.
package difftest

import (
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/pmezard/go-difflib/difflib"
)

// Assert fails the test with a line-by-line diff when got differs from
// want. Suited to short outputs where the whole patch is readable.
func Assert(t *testing.T, label, want, got string) {
	t.Helper()
	if patch := diff.Diff(want, got); patch != "" {
		t.Errorf("diff %s (want -, got +):\n%s", label, patch)
	}
}

// AssertUnified is Assert for large outputs: it renders a unified diff
// with three lines of context so only the mismatching regions show up.
func AssertUnified(t *testing.T, label, want, got string) {
	t.Helper()
	if want == got {
		return
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diff %s: %v", label, err)
	}
	t.Errorf("diff %s:\n%s", label, text)
}
