package eval

import "github.com/arlowgrid/cellwise/internal/value"

// Resolver is the single seam between the evaluator and wherever cell
// values actually live. Rather than one resolver type that switches
// between raw and cached lookups at runtime, this package defines one
// interface with two concrete implementations (see internal/workbook):
// a live, uncached resolver and a precomputed-result cache.
type Resolver interface {
	// Resolve returns the value at sheet!(row,col), zero-based. A cell
	// beyond the resolver's backing store resolves to value.Empty,
	// matching spreadsheet convention that unfilled cells are blank
	// rather than errors; a sheet name that does not exist in the
	// workbook resolves to a #REF! error value instead.
	Resolve(sheet string, row, col int) value.Value
}
