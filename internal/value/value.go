// Package value implements the spreadsheet value domain: the tagged union
// of types a formula can produce, the coercion rules between them, and the
// fixed vocabulary of error sentinels cells can display.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBool
	KindError
	KindArray
)

// ErrorCode enumerates the fixed set of spreadsheet error sentinels.
type ErrorCode uint8

const (
	ErrDivZero ErrorCode = iota + 1
	ErrValue
	ErrName
	ErrRef
	ErrCycle
	ErrGeneric
)

// errorText maps each ErrorCode to its displayed sentinel text.
var errorText = map[ErrorCode]string{
	ErrDivZero: "#DIV/0!",
	ErrValue:   "#VALUE!",
	ErrName:    "#NAME?",
	ErrRef:     "#REF!",
	ErrCycle:   "#CYCLE!",
	ErrGeneric: "#ERROR",
}

// CellError represents a spreadsheet-domain failure that must be visible
// inside a cell, as opposed to a host-level Go error. It implements the
// error interface so it can be handled with ordinary Go error-handling
// idioms where convenient, but evaluation never returns it through the
// error return of Eval; it is always carried as a Value of KindError so
// it can flow through arithmetic and comparisons like any other value.
type CellError struct {
	Code ErrorCode
}

func (e *CellError) Error() string {
	if s, ok := errorText[e.Code]; ok {
		return s
	}
	return errorText[ErrGeneric]
}

// NewError constructs a Value wrapping a CellError with the given code.
func NewError(code ErrorCode) Value {
	return Value{kind: KindError, err: &CellError{Code: code}}
}

// Value is the tagged union every formula evaluates to.
type Value struct {
	kind Kind
	num  float64
	text string
	b    bool
	err  *CellError
	arr  [][]Value // row-major, only populated for KindArray
}

// Empty is the singleton empty-cell value.
var Empty = Value{kind: KindEmpty}

func Number(n float64) Value { return Value{kind: KindNumber, num: n} }
func Text(s string) Value   { return Value{kind: KindText, text: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

// Array builds a KindArray value from a row-major grid, used to carry the
// contents of a range reference before a built-in function reduces it.
func Array(rows [][]Value) Value { return Value{kind: KindArray, arr: rows} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsError() bool { return v.kind == KindError }
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsError returns the underlying CellError and true if v is an error value.
func (v Value) AsError() (*CellError, bool) {
	if v.kind == KindError {
		return v.err, true
	}
	return nil, false
}

// AsArray returns the underlying row-major grid and true if v is an array.
func (v Value) AsArray() ([][]Value, bool) {
	if v.kind == KindArray {
		return v.arr, true
	}
	return nil, false
}

// Flatten returns every scalar leaf of v in row-major order: a single
// element slice for scalars, all cells for an array (Empty cells
// included), nothing for a bare Empty.
func (v Value) Flatten() []Value {
	switch v.kind {
	case KindEmpty:
		return nil
	case KindArray:
		out := make([]Value, 0, len(v.arr)*4)
		for _, row := range v.arr {
			for _, cell := range row {
				if cell.kind == KindArray {
					out = append(out, cell.Flatten()...)
					continue
				}
				out = append(out, cell)
			}
		}
		return out
	default:
		return []Value{v}
	}
}

// ToNumber coerces v to a numeric value per spreadsheet numeric-context
// rules: numbers pass through, booleans become 0/1, empty becomes 0, text
// parses as a float literal or yields #VALUE!, arrays are rejected.
func (v Value) ToNumber() Value {
	switch v.kind {
	case KindNumber:
		return v
	case KindBool:
		if v.b {
			return Number(1)
		}
		return Number(0)
	case KindEmpty:
		return Number(0)
	case KindText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil {
			return NewError(ErrValue)
		}
		return Number(n)
	case KindError:
		return v
	default:
		return NewError(ErrValue)
	}
}

// ToText coerces v to a text value per spreadsheet text-context rules:
// used only at the emission boundary or by text-producing operators (&),
// never mutates how numbers are carried during arithmetic.
func (v Value) ToText(precision int) Value {
	switch v.kind {
	case KindText:
		return v
	case KindNumber:
		return Text(FormatNumber(v.num, precision))
	case KindBool:
		if v.b {
			return Text("True")
		}
		return Text("False")
	case KindEmpty:
		return Text("")
	case KindError:
		return v
	default:
		return NewError(ErrValue)
	}
}

// ToBool coerces v to a boolean value per spreadsheet boolean-context
// rules: booleans pass through, 0 is false and any other number is true,
// empty is false, and the literal text TRUE/FALSE (case-insensitive) maps
// to the corresponding boolean; any other text is #VALUE!.
func (v Value) ToBool() Value {
	switch v.kind {
	case KindBool:
		return v
	case KindNumber:
		return Bool(v.num != 0)
	case KindEmpty:
		return Bool(false)
	case KindText:
		switch strings.ToUpper(v.text) {
		case "TRUE":
			return Bool(true)
		case "FALSE":
			return Bool(false)
		default:
			return NewError(ErrValue)
		}
	case KindError:
		return v
	default:
		return NewError(ErrValue)
	}
}

// Num returns the underlying float64. Callers must only call this after
// confirming Kind() == KindNumber (typically via ToNumber).
func (v Value) Num() float64 { return v.num }

// Str returns the underlying string. Callers must only call this after
// confirming Kind() == KindText (typically via ToText).
func (v Value) Str() string { return v.text }

// BoolVal returns the underlying bool. Callers must only call this after
// confirming Kind() == KindBool (typically via ToBool).
func (v Value) BoolVal() bool { return v.b }

// FormatNumber renders a float with a fixed number of decimal places.
func FormatNumber(n float64, precision int) string {
	return strconv.FormatFloat(n, 'f', precision, 64)
}

// Display renders v as it should appear in a processed cell: the one
// place in the system where a typed Value becomes display text. Numbers
// use FormatNumber at the given precision; everything else has an
// unambiguous literal rendering.
func Display(v Value, precision int) string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return FormatNumber(v.num, precision)
	case KindText:
		return v.text
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindError:
		return v.err.Error()
	case KindArray:
		// only reachable if a formula's top-level result is an
		// unreduced array; render the top-left cell, matching how
		// spreadsheet UIs spill-display a single anchor value.
		if len(v.arr) > 0 && len(v.arr[0]) > 0 {
			return Display(v.arr[0][0], precision)
		}
		return ""
	default:
		return fmt.Sprintf("%v", v.num)
	}
}

// ColumnLetterToIndex converts a spreadsheet column letter (A, B, ..., Z,
// AA, ...) to a zero-based column index.
func ColumnLetterToIndex(letters string) int {
	idx := 0
	for _, c := range strings.ToUpper(letters) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}

// ColumnIndexToLetter is the inverse of ColumnLetterToIndex.
func ColumnIndexToLetter(index int) string {
	index++
	var out []byte
	for index > 0 {
		index--
		out = append([]byte{byte('A' + index%26)}, out...)
		index /= 26
	}
	return string(out)
}
