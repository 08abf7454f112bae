package loader

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arlowgrid/cellwise/internal/workbook"
)

// XLSXLoader reads and writes workbooks as .xlsx files using
// github.com/xuri/excelize/v2, grounded on artukn-excelize's
// EachCellFormula/SetCalcedCellFormula helpers (each.go) for the
// formula-vs-value cell distinction and on its use of
// CoordinatesToCellName for address formatting.
type XLSXLoader struct{}

// Load implements Loader.
func (XLSXLoader) Load(path string) (*workbook.Book, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book := workbook.New()
	for _, name := range f.GetSheetList() {
		sheet := book.Sheet(name)
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		for r, row := range rows {
			for c := range row {
				cellRef, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					continue
				}
				formula, _ := f.GetCellFormula(name, cellRef)
				if formula != "" {
					sheet.Cell(cellRef).RawInput = "=" + formula
					continue
				}
				val, err := f.GetCellValue(name, cellRef)
				if err == nil && val != "" {
					sheet.Cell(cellRef).RawInput = val
				}
			}
		}
	}
	return book, nil
}

// Save implements Loader.
func (XLSXLoader) Save(book *workbook.Book, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	names := book.SheetNames()
	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		sheet, _ := book.LookupSheet(name)
		for _, id := range sheet.CellIDs() {
			cell := sheet.Cells[id]
			switch {
			case cell.IsFormula():
				if err := f.SetCellFormula(name, id, strings.TrimPrefix(cell.RawInput, "=")); err != nil {
					return err
				}
			case cell.RawInput != "":
				if err := f.SetCellValue(name, id, cell.RawInput); err != nil {
					return err
				}
			}
		}
	}
	return f.SaveAs(path)
}
