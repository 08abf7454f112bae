package depgraph

import (
	"sort"
	"testing"

	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/parser"
)

func mustParse(t *testing.T, formula string) astnode.Node {
	t.Helper()
	node, err := parser.ParseFormula(formula)
	if err != nil {
		t.Fatalf("parse %q: %v", formula, err)
	}
	return node
}

func sortedFQKs(deps []FQK) []string {
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = string(d)
	}
	sort.Strings(out)
	return out
}

func TestExtractRangeExpandsToEveryCellInSpan(t *testing.T) {
	node := mustParse(t, "=SUM(A1:B2)")
	deps, poisoned := Extract(node, "Sheet1")
	if poisoned {
		t.Fatalf("unexpected poison")
	}
	want := []string{"Sheet1!A1", "Sheet1!A2", "Sheet1!B1", "Sheet1!B2"}
	got := sortedFQKs(deps)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExtractCrossSheetReference(t *testing.T) {
	node := mustParse(t, "=Sheet2!A1*2")
	deps, poisoned := Extract(node, "Sheet1")
	if poisoned {
		t.Fatalf("unexpected poison")
	}
	if len(deps) != 1 || deps[0] != "Sheet2!A1" {
		t.Fatalf("got %v, want [Sheet2!A1]", deps)
	}
}

func TestExtractOversizedRangeIsPoisoned(t *testing.T) {
	node := mustParse(t, "=SUM(A1:ZZ9999999)")
	_, poisoned := Extract(node, "Sheet1")
	if !poisoned {
		t.Fatalf("expected an oversized range to poison the formula")
	}
}

func TestExtractMismatchedRangeEndSheetIsPoisoned(t *testing.T) {
	node := mustParse(t, "=SUM(A1:Sheet2!B3)")
	_, poisoned := Extract(node, "Sheet1")
	if !poisoned {
		t.Fatalf("expected a range whose end names a different sheet to poison the formula")
	}
}

func TestExtractRangeEndSheetMatchingStartIsNotPoisoned(t *testing.T) {
	node := mustParse(t, "=SUM(Sheet1!A1:Sheet1!B2)")
	deps, poisoned := Extract(node, "Sheet1")
	if poisoned {
		t.Fatalf("unexpected poison when both ends share a sheet")
	}
	if len(deps) != 4 {
		t.Fatalf("got %d deps, want 4", len(deps))
	}
}
