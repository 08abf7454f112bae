package depgraph

import (
	"fmt"

	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/value"
)

// MakeFQK builds a fully-qualified cell key from a sheet name and
// zero-based row/column indices.
func MakeFQK(sheet string, row, col int) FQK {
	return FQK(fmt.Sprintf("%s!%s%d", sheet, value.ColumnIndexToLetter(col), row+1))
}

// MaxRangeCells is the largest rectangular span a single range reference
// may expand to before the extractor refuses to enumerate it; a formula
// that references a larger range is poisoned to #REF! instead (spec.md
// §4.3's range size cap).
const MaxRangeCells = 1_048_576

// Extract returns the cells node reads, unqualified references resolved
// against currentSheet. poisoned is true, and deps nil, when the formula
// reads a range too large to enumerate, or a range whose end cell names a
// sheet other than its start cell's. Either condition means the owning
// formula must resolve directly to #REF! without any dependency edges.
func Extract(node astnode.Node, currentSheet string) (deps []FQK, poisoned bool) {
	var out []FQK
	bad := false
	var walk func(astnode.Node)
	walk = func(n astnode.Node) {
		if bad {
			return
		}
		switch t := n.(type) {
		case *astnode.CellRefNode:
			out = append(out, MakeFQK(sheetOf(t.Sheet, currentSheet), t.Row, t.Column))
		case *astnode.RangeRefNode:
			sheet := sheetOf(t.Start.Sheet, currentSheet)
			if t.End.Sheet != "" && t.End.Sheet != sheet {
				bad = true
				return
			}
			r0, r1 := t.Start.Row, t.End.Row
			c0, c1 := t.Start.Column, t.End.Column
			if r1 < r0 {
				r0, r1 = r1, r0
			}
			if c1 < c0 {
				c0, c1 = c1, c0
			}
			size := (r1 - r0 + 1) * (c1 - c0 + 1)
			if size > MaxRangeCells {
				bad = true
				return
			}
			for row := r0; row <= r1; row++ {
				for col := c0; col <= c1; col++ {
					out = append(out, MakeFQK(sheet, row, col))
				}
			}
		case *astnode.BinaryNode:
			walk(t.Left)
			walk(t.Right)
		case *astnode.UnaryNode:
			walk(t.Operand)
		case *astnode.FuncCallNode:
			for _, arg := range t.Args {
				walk(arg)
			}
		}
	}
	walk(node)
	if bad {
		return nil, true
	}
	return out, false
}

func sheetOf(sheet, currentSheet string) string {
	if sheet == "" {
		return currentSheet
	}
	return sheet
}
