// Package eval evaluates a formula AST against a Resolver, producing a
// typed Value. No display formatting happens here: values stay typed
// all the way through evaluation and are only rendered to text at the
// workbook-emission boundary (internal/value.Display).
package eval

import (
	"math"
	"strings"

	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/value"
)

// Evaluator walks an AST and produces a Value, given a Resolver for
// looking up other cells' values and a default sheet for unqualified
// references.
type Evaluator struct {
	Precision int
}

// New creates an Evaluator with the given display precision (used only
// when the & operator coerces a number to text; arithmetic itself is
// precision-independent).
func New(precision int) *Evaluator {
	return &Evaluator{Precision: precision}
}

// Eval evaluates node in the context of currentSheet (the sheet the
// formula itself lives on, used to resolve unqualified cell references).
func (e *Evaluator) Eval(node astnode.Node, currentSheet string, r Resolver) value.Value {
	switch n := node.(type) {
	case *astnode.NumberNode:
		return value.Number(n.Value)
	case *astnode.TextNode:
		return value.Text(n.Value)
	case *astnode.BoolNode:
		return value.Bool(n.Value)
	case *astnode.CellRefNode:
		return e.evalCellRef(n, currentSheet, r)
	case *astnode.RangeRefNode:
		return e.evalRangeRef(n, currentSheet, r)
	case *astnode.UnaryNode:
		return e.evalUnary(n, currentSheet, r)
	case *astnode.BinaryNode:
		return e.evalBinary(n, currentSheet, r)
	case *astnode.FuncCallNode:
		return e.evalFuncCall(n, currentSheet, r)
	default:
		return value.NewError(value.ErrGeneric)
	}
}

func sheetOf(sheet, currentSheet string) string {
	if sheet == "" {
		return currentSheet
	}
	return sheet
}

func (e *Evaluator) evalCellRef(n *astnode.CellRefNode, currentSheet string, r Resolver) value.Value {
	return r.Resolve(sheetOf(n.Sheet, currentSheet), n.Row, n.Column)
}

// maxRangeCells mirrors depgraph.MaxRangeCells (spec.md §4.3); duplicated
// here rather than imported so this leaf evaluator package does not take
// a dependency on the dependency-graph package it is evaluated alongside.
const maxRangeCells = 1_048_576

func (e *Evaluator) evalRangeRef(n *astnode.RangeRefNode, currentSheet string, r Resolver) value.Value {
	sheet := sheetOf(n.Start.Sheet, currentSheet)
	if n.End.Sheet != "" && n.End.Sheet != sheet {
		return value.NewError(value.ErrRef)
	}
	r0, r1 := n.Start.Row, n.End.Row
	c0, c1 := n.Start.Column, n.End.Column
	if r1 < r0 {
		r0, r1 = r1, r0
	}
	if c1 < c0 {
		c0, c1 = c1, c0
	}
	if (r1-r0+1)*(c1-c0+1) > maxRangeCells {
		return value.NewError(value.ErrRef)
	}
	rows := make([][]value.Value, 0, r1-r0+1)
	for row := r0; row <= r1; row++ {
		cols := make([]value.Value, 0, c1-c0+1)
		for col := c0; col <= c1; col++ {
			cols = append(cols, r.Resolve(sheet, row, col))
		}
		rows = append(rows, cols)
	}
	return value.Array(rows)
}

func (e *Evaluator) evalUnary(n *astnode.UnaryNode, currentSheet string, r Resolver) value.Value {
	operand := e.Eval(n.Operand, currentSheet, r)
	if operand.IsError() {
		return operand
	}
	num := operand.ToNumber()
	if num.IsError() {
		return num
	}
	if n.Op == astnode.OpNeg {
		return value.Number(-num.Num())
	}
	return value.Number(num.Num())
}

func (e *Evaluator) evalBinary(n *astnode.BinaryNode, currentSheet string, r Resolver) value.Value {
	left := e.Eval(n.Left, currentSheet, r)
	if left.IsError() {
		return left
	}
	right := e.Eval(n.Right, currentSheet, r)
	if right.IsError() {
		return right
	}

	switch n.Op {
	case astnode.OpAdd, astnode.OpSub, astnode.OpMul, astnode.OpDiv, astnode.OpPow:
		return arithmetic(n.Op, left, right)
	case astnode.OpConcat:
		return concat(left, right, e.Precision)
	default:
		return compare(n.Op, left, right)
	}
}

func arithmetic(op astnode.BinaryOp, left, right value.Value) value.Value {
	l := left.ToNumber()
	if l.IsError() {
		return l
	}
	rr := right.ToNumber()
	if rr.IsError() {
		return rr
	}
	a, b := l.Num(), rr.Num()
	switch op {
	case astnode.OpAdd:
		return value.Number(a + b)
	case astnode.OpSub:
		return value.Number(a - b)
	case astnode.OpMul:
		return value.Number(a * b)
	case astnode.OpDiv:
		if b == 0 {
			return value.NewError(value.ErrDivZero)
		}
		return value.Number(a / b)
	case astnode.OpPow:
		result := math.Pow(a, b)
		if math.IsNaN(result) {
			// negative base with a non-integer exponent has no real
			// result (e.g. (-2)^0.5).
			return value.NewError(value.ErrValue)
		}
		return value.Number(result)
	default:
		return value.NewError(value.ErrGeneric)
	}
}

func concat(left, right value.Value, precision int) value.Value {
	l := left.ToText(precision)
	if l.IsError() {
		return l
	}
	rr := right.ToText(precision)
	if rr.IsError() {
		return rr
	}
	return value.Text(l.Str() + rr.Str())
}

func compare(op astnode.BinaryOp, left, right value.Value) value.Value {
	cmp, cmpErr := compareValues(left, right)
	if cmpErr != nil {
		return value.NewError(cmpErr.Code)
	}
	var result bool
	switch op {
	case astnode.OpEq:
		result = cmp == 0
	case astnode.OpNe:
		result = cmp != 0
	case astnode.OpLt:
		result = cmp < 0
	case astnode.OpLe:
		result = cmp <= 0
	case astnode.OpGt:
		result = cmp > 0
	case astnode.OpGe:
		result = cmp >= 0
	}
	return value.Bool(result)
}

// compareValues orders two values: same-kind values compare directly
// (numeric, lexicographic text, or bool-as-0/1); Empty against a Number or
// Text coerces to 0 or "" respectively before comparing, rather than
// ranking by kind; any other mismatched kinds fall back to a fixed type
// rank (number < text < bool), matching the conventional spreadsheet
// ordering used when a comparison spans types.
func compareValues(a, b value.Value) (int, *value.CellError) {
	if err, ok := a.AsError(); ok {
		return 0, err
	}
	if err, ok := b.AsError(); ok {
		return 0, err
	}
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case value.KindNumber:
			return cmpFloat(a.Num(), b.Num()), nil
		case value.KindBool:
			return cmpBool(a.BoolVal(), b.BoolVal()), nil
		case value.KindText:
			return strings.Compare(strings.ToUpper(a.Str()), strings.ToUpper(b.Str())), nil
		case value.KindEmpty:
			return 0, nil
		}
	}
	if a.Kind() == value.KindEmpty {
		if c, ok := compareEmptyAgainst(b); ok {
			return -c, nil
		}
	}
	if b.Kind() == value.KindEmpty {
		if c, ok := compareEmptyAgainst(a); ok {
			return c, nil
		}
	}
	return cmpInt(typeRank(a), typeRank(b)), nil
}

// compareEmptyAgainst compares Empty coerced to 0 or "" against v, when v
// is a Number or Text; the returned int orders v relative to that coerced
// Empty (i.e. cmp(v, Empty)). ok is false for any other kind, leaving the
// caller to fall back to type-rank ordering.
func compareEmptyAgainst(v value.Value) (int, bool) {
	switch v.Kind() {
	case value.KindNumber:
		return cmpFloat(v.Num(), 0), true
	case value.KindText:
		return strings.Compare(strings.ToUpper(v.Str()), ""), true
	default:
		return 0, false
	}
}

func typeRank(v value.Value) int {
	switch v.Kind() {
	case value.KindEmpty:
		return 0
	case value.KindNumber:
		return 1
	case value.KindText:
		return 2
	case value.KindBool:
		return 3
	default:
		return 4
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	ai, bi := 0, 0
	if a {
		ai = 1
	}
	if b {
		bi = 1
	}
	return cmpInt(ai, bi)
}
