package eval

import (
	"strings"

	"github.com/arlowgrid/cellwise/internal/astnode"
	"github.com/arlowgrid/cellwise/internal/value"
)

// evalFuncCall dispatches a function call node to the matching builtin:
// SUM, AVERAGE, COUNT, MAX, MIN, IF.
func (e *Evaluator) evalFuncCall(n *astnode.FuncCallNode, currentSheet string, r Resolver) value.Value {
	switch strings.ToUpper(n.Name) {
	case "SUM":
		return e.builtinSum(n.Args, currentSheet, r)
	case "AVERAGE":
		return e.builtinAverage(n.Args, currentSheet, r)
	case "COUNT":
		return e.builtinCount(n.Args, currentSheet, r)
	case "MAX":
		return e.builtinMax(n.Args, currentSheet, r)
	case "MIN":
		return e.builtinMin(n.Args, currentSheet, r)
	case "IF":
		return e.builtinIf(n.Args, currentSheet, r)
	default:
		return value.NewError(value.ErrName)
	}
}

// flattenArgs evaluates every argument node and flattens range/array
// results into a single scalar list, so aggregate functions can treat a
// bare value and a range argument uniformly.
func (e *Evaluator) flattenArgs(args []astnode.Node, currentSheet string, r Resolver) ([]value.Value, *value.CellError) {
	var out []value.Value
	for _, arg := range args {
		v := e.Eval(arg, currentSheet, r)
		if cellErr, ok := v.AsError(); ok {
			return nil, cellErr
		}
		out = append(out, v.Flatten()...)
	}
	return out, nil
}

func (e *Evaluator) builtinSum(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	values, err := e.flattenArgs(args, currentSheet, r)
	if err != nil {
		return value.NewError(err.Code)
	}
	sum := 0.0
	for _, v := range values {
		if v.Kind() == value.KindNumber {
			sum += v.Num()
		}
	}
	return value.Number(sum)
}

func (e *Evaluator) builtinAverage(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	values, err := e.flattenArgs(args, currentSheet, r)
	if err != nil {
		return value.NewError(err.Code)
	}
	sum := 0.0
	count := 0
	for _, v := range values {
		if v.Kind() == value.KindNumber {
			sum += v.Num()
			count++
		}
	}
	if count == 0 {
		return value.NewError(value.ErrDivZero)
	}
	return value.Number(sum / float64(count))
}

// builtinCount only counts numeric values, matching the convention that
// COUNT (unlike COUNTA, which this engine does not implement) ignores
// text and boolean cells even when they are present in a range.
func (e *Evaluator) builtinCount(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	values, err := e.flattenArgs(args, currentSheet, r)
	if err != nil {
		return value.NewError(err.Code)
	}
	count := 0
	for _, v := range values {
		if v.Kind() == value.KindNumber {
			count++
		}
	}
	return value.Number(float64(count))
}

// builtinMax and builtinMin return 0 when no numeric values are present,
// a deliberate legacy-compatibility choice rather than Excel's own #NUM!
// behavior.
func (e *Evaluator) builtinMax(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	values, err := e.flattenArgs(args, currentSheet, r)
	if err != nil {
		return value.NewError(err.Code)
	}
	max := 0.0
	found := false
	for _, v := range values {
		if v.Kind() != value.KindNumber {
			continue
		}
		if !found || v.Num() > max {
			max = v.Num()
			found = true
		}
	}
	return value.Number(max)
}

func (e *Evaluator) builtinMin(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	values, err := e.flattenArgs(args, currentSheet, r)
	if err != nil {
		return value.NewError(err.Code)
	}
	min := 0.0
	found := false
	for _, v := range values {
		if v.Kind() != value.KindNumber {
			continue
		}
		if !found || v.Num() < min {
			min = v.Num()
			found = true
		}
	}
	return value.Number(min)
}

// builtinIf implements IF(condition, then[, else]); else defaults to
// FALSE when omitted, matching spreadsheet convention.
func (e *Evaluator) builtinIf(args []astnode.Node, currentSheet string, r Resolver) value.Value {
	if len(args) < 2 || len(args) > 3 {
		return value.NewError(value.ErrValue)
	}
	cond := e.Eval(args[0], currentSheet, r)
	if cond.IsError() {
		return cond
	}
	boolCond := cond.ToBool()
	if boolCond.IsError() {
		return boolCond
	}
	if boolCond.BoolVal() {
		return e.Eval(args[1], currentSheet, r)
	}
	if len(args) == 3 {
		return e.Eval(args[2], currentSheet, r)
	}
	return value.Bool(false)
}
