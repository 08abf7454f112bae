package workbook

import (
	"testing"

	"github.com/arlowgrid/cellwise/internal/value"
)

func display(t *testing.T, book *Book, sheet, cellID string) string {
	t.Helper()
	s, ok := book.LookupSheet(sheet)
	if !ok {
		t.Fatalf("sheet %q not found", sheet)
	}
	c, ok := s.Cells[cellID]
	if !ok {
		t.Fatalf("cell %s!%s not found", sheet, cellID)
	}
	return value.Display(c.Result, 1)
}

func TestProcessSimpleArithmeticChain(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "2"
	sheet.Cell("A2").RawInput = "3"
	sheet.Cell("A3").RawInput = "=A1+A2"
	sheet.Cell("A4").RawInput = "=A3*2"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "A3"); got != "5.0" {
		t.Fatalf("A3 = %q, want 5.0", got)
	}
	if got := display(t, book, "Sheet1", "A4"); got != "10.0" {
		t.Fatalf("A4 = %q, want 10.0", got)
	}
}

func TestProcessSumOverRange(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "1"
	sheet.Cell("A2").RawInput = "2"
	sheet.Cell("A3").RawInput = "3"
	sheet.Cell("B1").RawInput = "=SUM(A1:A3)"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "B1"); got != "6.0" {
		t.Fatalf("B1 = %q, want 6.0", got)
	}
}

func TestProcessCrossSheetReference(t *testing.T) {
	book := New()
	s1 := book.Sheet("Sheet1")
	s1.Cell("A1").RawInput = "10"
	s2 := book.Sheet("Sheet2")
	s2.Cell("A1").RawInput = "=Sheet1!A1*3"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet2", "A1"); got != "30.0" {
		t.Fatalf("Sheet2!A1 = %q, want 30.0", got)
	}
}

func TestProcessDivisionByZeroProducesErrorCell(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "0"
	sheet.Cell("B1").RawInput = "=1/A1"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "B1"); got != "#DIV/0!" {
		t.Fatalf("B1 = %q, want #DIV/0!", got)
	}
}

func TestProcessCyclePoisonsOnlyAffectedCells(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "=B1+1"
	sheet.Cell("B1").RawInput = "=A1+1"
	sheet.Cell("C1").RawInput = "=A1*2" // depends on the cycle
	sheet.Cell("D1").RawInput = "5"
	sheet.Cell("E1").RawInput = "=D1+1" // unrelated to the cycle

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "A1"); got != "#CYCLE!" {
		t.Fatalf("A1 = %q, want #CYCLE!", got)
	}
	if got := display(t, book, "Sheet1", "B1"); got != "#CYCLE!" {
		t.Fatalf("B1 = %q, want #CYCLE!", got)
	}
	if got := display(t, book, "Sheet1", "C1"); got != "#CYCLE!" {
		t.Fatalf("C1 = %q, want #CYCLE! (propagated from its cycle-member precedent)", got)
	}
	if got := display(t, book, "Sheet1", "E1"); got != "6.0" {
		t.Fatalf("E1 = %q, want 6.0, unrelated cells must still compute", got)
	}
}

func TestProcessIfWithConditionalBranches(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "42"
	sheet.Cell("B1").RawInput = `=IF(A1>10,"big","small")`

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "B1"); got != "big" {
		t.Fatalf("B1 = %q, want big", got)
	}
}

func TestProcessUnparsableFormulaIsolatedToItsCell(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "=1+"
	sheet.Cell("B1").RawInput = "5"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "A1"); got != "#ERROR" {
		t.Fatalf("A1 = %q, want #ERROR", got)
	}
	if got := display(t, book, "Sheet1", "B1"); got != "5.0" {
		t.Fatalf("B1 = %q, want 5.0", got)
	}
}

func TestProcessOversizedRangePoisonsToRef(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "=SUM(A1:ZZ9999999)"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "A1"); got != "#REF!" {
		t.Fatalf("A1 = %q, want #REF!", got)
	}
}

func TestProcessReferenceToMissingSheetIsRef(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "=NoSuchSheet!A1+1"

	if err := NewProcessor(1).Process(book); err != nil {
		t.Fatalf("process error: %v", err)
	}
	if got := display(t, book, "Sheet1", "A1"); got != "#REF!" {
		t.Fatalf("A1 = %q, want #REF!", got)
	}
}

func TestEvaluateFormulaOneShot(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "10"
	sheet.Cell("A2").RawInput = "20"

	got := value.Display(EvaluateFormula("=A1+A2", book, "Sheet1", 1), 1)
	if got != "30.0" {
		t.Fatalf("EvaluateFormula = %q, want 30.0", got)
	}
}

func TestEvaluateFormulaParseErrorIsError(t *testing.T) {
	book := New()
	got := value.Display(EvaluateFormula("=1+", book, "Sheet1", 1), 1)
	if got != "#ERROR" {
		t.Fatalf("EvaluateFormula = %q, want #ERROR", got)
	}
}

func TestEvaluateFormulaCyclicReferenceIsCycle(t *testing.T) {
	book := New()
	sheet := book.Sheet("Sheet1")
	sheet.Cell("A1").RawInput = "=A1+1"

	got := value.Display(EvaluateFormula("=A1", book, "Sheet1", 1), 1)
	if got != "#CYCLE!" {
		t.Fatalf("EvaluateFormula on self-referencing cell = %q, want #CYCLE!", got)
	}
}
