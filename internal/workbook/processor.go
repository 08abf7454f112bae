// Processor orchestrates a full workbook recalculation: dependency
// extraction, graph construction, per-cell cycle attribution, and
// evaluation in topological order. The cycle-handling redesign recorded
// in DESIGN.md applies: a cycle poisons only the cells that are part of
// (or downstream of) it, not the entire workbook.
package workbook

import (
	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/depgraph"
	"github.com/arlowgrid/cellwise/internal/eval"
	"github.com/arlowgrid/cellwise/internal/parser"
	"github.com/arlowgrid/cellwise/internal/value"
)

// Processor recalculates every formula cell in a Book.
type Processor struct {
	Precision int
}

// NewProcessor creates a Processor that formats numeric results at the
// given decimal precision; 1 matches this engine's default one-decimal
// display convention.
func NewProcessor(precision int) *Processor {
	return &Processor{Precision: precision}
}

type parsedFormula struct {
	sheet string
	id    string
	node  astnode.Node
}

// Process recalculates every formula cell across every sheet in book,
// writing each cell's Result in place. Parse errors in an individual
// formula become a #ERROR result for that cell alone; the rest of the
// workbook still processes normally.
func (p *Processor) Process(book *Book) error {
	graph := depgraph.New()
	var formulas []parsedFormula
	parseErrors := make(map[depgraph.FQK]bool)
	poisonedRefs := make(map[depgraph.FQK]bool)

	for _, sheetName := range book.SheetNames() {
		sheet, _ := book.LookupSheet(sheetName)
		for _, id := range sheet.CellIDs() {
			cell := sheet.Cells[id]
			row, col, err := ParseCellID(id)
			if err != nil {
				continue
			}
			key := depgraph.MakeFQK(sheetName, row, col)
			graph.EnsureNode(key)

			if !cell.IsFormula() {
				continue
			}
			node, err := parser.ParseFormula(cell.RawInput)
			if err != nil {
				parseErrors[key] = true
				continue
			}
			deps, poisoned := depgraph.Extract(node, sheetName)
			if poisoned {
				// a range too large to enumerate, or a range whose end
				// cell names a mismatched sheet: evaluate straight to
				// #REF! without adding any dependency edges (spec.md §4.3).
				poisonedRefs[key] = true
				continue
			}
			formulas = append(formulas, parsedFormula{sheet: sheetName, id: id, node: node})
			for _, dep := range deps {
				graph.AddDependency(key, dep)
			}
		}
	}

	plan := graph.Plan()
	results := make(map[depgraph.FQK]value.Value, len(plan.Order)+len(plan.CycleMembers))

	for key := range plan.CycleMembers {
		results[key] = value.NewError(value.ErrCycle)
	}
	for key := range parseErrors {
		results[key] = value.NewError(value.ErrGeneric)
	}
	for key := range poisonedRefs {
		results[key] = value.NewError(value.ErrRef)
	}

	evaluator := eval.New(p.Precision)
	resolver := &CachedResolver{Book: book, Results: results}

	byKey := make(map[depgraph.FQK]parsedFormula, len(formulas))
	for _, f := range formulas {
		row, col, _ := ParseCellID(f.id)
		byKey[depgraph.MakeFQK(f.sheet, row, col)] = f
	}

	for _, key := range plan.Order {
		f, ok := byKey[key]
		if !ok {
			continue // non-formula cell, nothing to evaluate
		}
		results[key] = evaluator.Eval(f.node, f.sheet, resolver)
	}

	for _, sheetName := range book.SheetNames() {
		sheet, _ := book.LookupSheet(sheetName)
		for _, id := range sheet.CellIDs() {
			cell := sheet.Cells[id]
			if !cell.IsFormula() {
				cell.Result = ParseLiteral(cell.RawInput)
				continue
			}
			row, col, err := ParseCellID(id)
			if err != nil {
				continue
			}
			key := depgraph.MakeFQK(sheetName, row, col)
			if v, ok := results[key]; ok {
				cell.Result = v
			}
		}
	}

	return nil
}
