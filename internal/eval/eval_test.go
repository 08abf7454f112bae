package eval

import (
	"testing"

	"github.com/arlowgrid/cellwise/internal/parser"
	"github.com/arlowgrid/cellwise/internal/value"
)

// mapResolver resolves cells from a flat "Sheet!A1" -> Value map, enough
// to exercise the evaluator without pulling in the workbook package.
type mapResolver map[string]value.Value

func (m mapResolver) Resolve(sheet string, row, col int) value.Value {
	key := sheet + "!" + cellID(row, col)
	if v, ok := m[key]; ok {
		return v
	}
	return value.Empty
}

func cellID(row, col int) string {
	letters := ""
	n := col + 1
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	digits := ""
	n = row + 1
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return letters + digits
}

func evalFormula(t *testing.T, formula string, sheet string, r mapResolver) value.Value {
	t.Helper()
	node, err := parser.ParseFormula(formula)
	if err != nil {
		t.Fatalf("parse error for %q: %v", formula, err)
	}
	return New(1).Eval(node, sheet, r)
}

func TestArithmetic(t *testing.T) {
	r := mapResolver{}
	cases := map[string]float64{
		"=1+2*3": 7,
		"=(1+2)*3": 9,
		"=2^3^2": 512, // right-associative: 2^(3^2)
		"=10/4":  2.5,
	}
	for formula, want := range cases {
		got := evalFormula(t, formula, "Sheet1", r)
		if got.IsError() {
			t.Fatalf("%q: unexpected error %v", formula, got)
		}
		if got.Num() != want {
			t.Fatalf("%q = %v, want %v", formula, got.Num(), want)
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	got := evalFormula(t, "=1/0", "Sheet1", mapResolver{})
	errVal, ok := got.AsError()
	if !ok || errVal.Code != value.ErrDivZero {
		t.Fatalf("expected #DIV/0!, got %v", got)
	}
}

func TestCellReferenceAndSum(t *testing.T) {
	r := mapResolver{
		"Sheet1!A1": value.Number(1),
		"Sheet1!A2": value.Number(2),
		"Sheet1!A3": value.Number(3),
	}
	got := evalFormula(t, "=SUM(A1:A3)", "Sheet1", r)
	if got.Num() != 6 {
		t.Fatalf("SUM(A1:A3) = %v, want 6", got.Num())
	}
}

func TestAverageOfEmptyRangeIsDivZero(t *testing.T) {
	got := evalFormula(t, "=AVERAGE(A1:A3)", "Sheet1", mapResolver{})
	errVal, ok := got.AsError()
	if !ok || errVal.Code != value.ErrDivZero {
		t.Fatalf("expected #DIV/0!, got %v", got)
	}
}

func TestMaxMinDefaultToZeroWhenNoNumerics(t *testing.T) {
	r := mapResolver{"Sheet1!A1": value.Text("hi")}
	if got := evalFormula(t, "=MAX(A1)", "Sheet1", r); got.Num() != 0 {
		t.Fatalf("MAX with no numerics = %v, want 0", got.Num())
	}
	if got := evalFormula(t, "=MIN(A1)", "Sheet1", r); got.Num() != 0 {
		t.Fatalf("MIN with no numerics = %v, want 0", got.Num())
	}
}

func TestIfBranches(t *testing.T) {
	r := mapResolver{"Sheet1!A1": value.Number(5)}
	if got := evalFormula(t, `=IF(A1>0,"pos","non-pos")`, "Sheet1", r); got.Str() != "pos" {
		t.Fatalf("IF = %v, want pos", got)
	}
}

func TestIfWithoutElseDefaultsFalse(t *testing.T) {
	r := mapResolver{"Sheet1!A1": value.Number(-1)}
	got := evalFormula(t, "=IF(A1>0,1)", "Sheet1", r)
	if got.Kind() != value.KindBool || got.BoolVal() != false {
		t.Fatalf("IF without else = %v, want FALSE", got)
	}
}

func TestConcatenation(t *testing.T) {
	r := mapResolver{"Sheet1!A1": value.Text("Hello ")}
	got := evalFormula(t, `=A1&"World"`, "Sheet1", r)
	if got.Str() != "Hello World" {
		t.Fatalf("concat = %q, want %q", got.Str(), "Hello World")
	}
}

func TestErrorPropagatesThroughArithmetic(t *testing.T) {
	r := mapResolver{"Sheet1!A1": value.Text("not a number")}
	got := evalFormula(t, "=A1+1", "Sheet1", r)
	if !got.IsError() {
		t.Fatalf("expected error to propagate, got %v", got)
	}
}

func TestEmptyComparesAsZeroAgainstNumber(t *testing.T) {
	r := mapResolver{} // Sheet1!A1 left unset, resolves to Empty
	got := evalFormula(t, "=A1>-5", "Sheet1", r)
	if got.Kind() != value.KindBool || !got.BoolVal() {
		t.Fatalf("A1>-5 with blank A1 = %v, want TRUE", got)
	}
	got = evalFormula(t, "=A1<-5", "Sheet1", r)
	if got.Kind() != value.KindBool || got.BoolVal() {
		t.Fatalf("A1<-5 with blank A1 = %v, want FALSE", got)
	}
	got = evalFormula(t, "=A1=0", "Sheet1", r)
	if got.Kind() != value.KindBool || !got.BoolVal() {
		t.Fatalf("A1=0 with blank A1 = %v, want TRUE", got)
	}
}

func TestEmptyComparesAsEmptyStringAgainstText(t *testing.T) {
	r := mapResolver{}
	got := evalFormula(t, `=A1<"a"`, "Sheet1", r)
	if got.Kind() != value.KindBool || !got.BoolVal() {
		t.Fatalf(`A1<"a" with blank A1 = %v, want TRUE`, got)
	}
}

func TestNegativeBaseNonIntegerExponentIsValueError(t *testing.T) {
	got := evalFormula(t, "=(-2)^0.5", "Sheet1", mapResolver{})
	errVal, ok := got.AsError()
	if !ok || errVal.Code != value.ErrValue {
		t.Fatalf("expected #VALUE!, got %v", got)
	}
}
