// Package workbook defines the Book/Sheet/Cell data model shared by every
// loader and the processor.
package workbook

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arlowgrid/cellwise/internal/value"
)

// Cell holds a single cell's raw input and, once processed, its computed
// value. RawInput starting with "=" is a formula; anything else is a
// literal (empty string means an empty cell).
type Cell struct {
	RawInput string
	Result   value.Value
}

// IsFormula reports whether the cell's raw input is a formula.
func (c *Cell) IsFormula() bool { return strings.HasPrefix(c.RawInput, "=") }

// Sheet is a named collection of cells, keyed by cell id ("A1", "B12", ...).
type Sheet struct {
	Name  string
	Cells map[string]*Cell
}

func newSheet(name string) *Sheet {
	return &Sheet{Name: name, Cells: make(map[string]*Cell)}
}

// Cell returns the cell at id, creating an empty one if absent so callers
// can always mutate the map entry returned.
func (s *Sheet) Cell(id string) *Cell {
	c, ok := s.Cells[id]
	if !ok {
		c = &Cell{}
		s.Cells[id] = c
	}
	return c
}

// CellIDs returns every populated cell id in the sheet, sorted by row
// then column for deterministic iteration (used by loaders and tests).
func (s *Sheet) CellIDs() []string {
	ids := make([]string, 0, len(s.Cells))
	for id := range s.Cells {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ri, ci, _ := ParseCellID(ids[i])
		rj, cj, _ := ParseCellID(ids[j])
		if ri != rj {
			return ri < rj
		}
		return ci < cj
	})
	return ids
}

// Book is a collection of named sheets, order-preserving.
type Book struct {
	order  []string
	sheets map[string]*Sheet
}

// New creates an empty Book.
func New() *Book {
	return &Book{sheets: make(map[string]*Sheet)}
}

// Sheet returns the named sheet, creating it (and appending it to the
// sheet order) if it does not already exist.
func (b *Book) Sheet(name string) *Sheet {
	s, ok := b.sheets[name]
	if !ok {
		s = newSheet(name)
		b.sheets[name] = s
		b.order = append(b.order, name)
	}
	return s
}

// SheetNames returns sheet names in the order they were first created.
func (b *Book) SheetNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// LookupSheet returns an existing sheet without creating one.
func (b *Book) LookupSheet(name string) (*Sheet, bool) {
	s, ok := b.sheets[name]
	return s, ok
}

// ParseCellID splits a cell id like "A1" or "$AB$12" into zero-based
// row/column indices.
func ParseCellID(id string) (row, col int, err error) {
	i := 0
	if i < len(id) && id[i] == '$' {
		i++
	}
	letterStart := i
	for i < len(id) && isLetter(id[i]) {
		i++
	}
	letters := id[letterStart:i]
	if letters == "" {
		return 0, 0, fmt.Errorf("invalid cell id %q", id)
	}
	if i < len(id) && id[i] == '$' {
		i++
	}
	digitStart := i
	for i < len(id) && id[i] >= '0' && id[i] <= '9' {
		i++
	}
	digits := id[digitStart:i]
	if digits == "" || i != len(id) {
		return 0, 0, fmt.Errorf("invalid cell id %q", id)
	}
	rowNum, convErr := strconv.Atoi(digits)
	if convErr != nil {
		return 0, 0, fmt.Errorf("invalid cell id %q", id)
	}
	return rowNum - 1, value.ColumnLetterToIndex(letters), nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// CellID formats a zero-based row/column pair back into "A1" form.
func CellID(row, col int) string {
	return fmt.Sprintf("%s%d", value.ColumnIndexToLetter(col), row+1)
}

// ParseLiteral interprets a non-formula RawInput as a typed Value: empty
// string is KindEmpty, TRUE/FALSE (any case) is a bool, a valid float
// literal is a number, anything else is text. The resolvers call it each
// time they read a literal cell, and Processor calls it to fill a literal
// cell's Result.
func ParseLiteral(raw string) value.Value {
	if raw == "" {
		return value.Empty
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return value.Bool(true)
	case "FALSE":
		return value.Bool(false)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return value.Number(n)
	}
	return value.Text(raw)
}
