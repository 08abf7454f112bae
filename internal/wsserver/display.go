package wsserver

import (
	"github.com/arlowgrid/cellwise/internal/value"
	"github.com/arlowgrid/cellwise/internal/workbook"
)

func displayValue(cell *workbook.Cell, precision int) string {
	return value.Display(cell.Result, precision)
}
