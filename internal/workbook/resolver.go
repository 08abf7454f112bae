package workbook

import (
	"github.com/arlowgrid/cellwise/internal/depgraph"
	"github.com/arlowgrid/cellwise/internal/eval"
	"github.com/arlowgrid/cellwise/internal/parser"
	"github.com/arlowgrid/cellwise/internal/value"
)

// LiveResolver re-parses and re-evaluates every formula cell it is asked
// for, with no memoization. It is the "direct" half of a two-resolver
// split: correct for ad hoc, one-off formula evaluation (see
// EvaluateFormula), but exponential on a book whose formulas share
// precedents, since nothing is cached between lookups. Batch processing
// of a whole workbook should use Processor, which builds a CachedResolver
// instead.
type LiveResolver struct {
	Book      *Book
	Evaluator *eval.Evaluator

	// visiting tracks fully-qualified cells currently being resolved, on
	// this resolver's call stack, so a formula that (directly or
	// transitively) refers back to itself resolves to #CYCLE! instead of
	// recursing without bound.
	visiting map[depgraph.FQK]bool
}

// Resolve implements eval.Resolver.
func (r *LiveResolver) Resolve(sheet string, row, col int) value.Value {
	s, ok := r.Book.LookupSheet(sheet)
	if !ok {
		return value.NewError(value.ErrRef)
	}
	id := CellID(row, col)
	cell, ok := s.Cells[id]
	if !ok {
		return value.Empty
	}
	if !cell.IsFormula() {
		return ParseLiteral(cell.RawInput)
	}
	node, err := parser.ParseFormula(cell.RawInput)
	if err != nil {
		return value.NewError(value.ErrGeneric)
	}
	key := depgraph.MakeFQK(sheet, row, col)
	if r.visiting == nil {
		r.visiting = make(map[depgraph.FQK]bool)
	}
	if r.visiting[key] {
		return value.NewError(value.ErrCycle)
	}
	r.visiting[key] = true
	result := r.Evaluator.Eval(node, sheet, r)
	delete(r.visiting, key)
	return result
}

// CachedResolver reads from a precomputed map of already-evaluated cell
// results, filled in topological order by Processor. It never triggers
// evaluation itself. On a lookup miss it falls back to the book: a sheet
// that does not exist resolves to #REF!, a literal cell to its parsed
// value, and an absent cell or a formula cell with no result yet to
// value.Empty, since blank-cell semantics and not-yet-computed are
// observationally the same from a formula's point of view at the instant
// it runs.
type CachedResolver struct {
	Book    *Book
	Results map[depgraph.FQK]value.Value
}

// EvaluateFormula parses and evaluates a single formula string against
// book without mutating it or writing any result back into a cell: the
// one-shot convenience entrypoint from spec.md §6 ("evaluate_formula"),
// used by callers that want a formula's value without running a full
// Processor pass (e.g. a "what would this expression compute to right
// now" query from a UI formula bar). currentSheet resolves any
// unqualified cell reference the formula contains. A formula that fails
// to parse evaluates to #ERROR, matching Processor's parse-error policy.
func EvaluateFormula(text string, book *Book, currentSheet string, precision int) value.Value {
	node, err := parser.ParseFormula(text)
	if err != nil {
		return value.NewError(value.ErrGeneric)
	}
	evaluator := eval.New(precision)
	resolver := &LiveResolver{Book: book, Evaluator: evaluator}
	return evaluator.Eval(node, currentSheet, resolver)
}

// Resolve implements eval.Resolver.
func (r *CachedResolver) Resolve(sheet string, row, col int) value.Value {
	key := depgraph.MakeFQK(sheet, row, col)
	if v, ok := r.Results[key]; ok {
		return v
	}
	s, ok := r.Book.LookupSheet(sheet)
	if !ok {
		return value.NewError(value.ErrRef)
	}
	id := CellID(row, col)
	cell, ok := s.Cells[id]
	if !ok || cell.IsFormula() {
		// a formula cell with no cached result yet has not been
		// reached by the current evaluation plan; treat it as blank
		// rather than guessing at its value.
		return value.Empty
	}
	return ParseLiteral(cell.RawInput)
}
