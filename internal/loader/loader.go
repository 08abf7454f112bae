// Package loader reads and writes workbook.Book values against concrete
// storage formats. Both concrete loaders implement the same Loader
// interface so cmd/cellwise can dispatch on file extension without
// knowing which backing library is involved.
package loader

import "github.com/arlowgrid/cellwise/internal/workbook"

// Loader loads and saves a workbook against a specific file format.
type Loader interface {
	Load(path string) (*workbook.Book, error)
	Save(book *workbook.Book, path string) error
}

// ForPath returns the Loader appropriate for path's extension: ".xlsx"
// uses XLSXLoader, everything else (".yaml", ".yml", or no extension)
// uses YAMLLoader, the default on-disk workbook format.
func ForPath(path string) Loader {
	if hasSuffixFold(path, ".xlsx") {
		return &XLSXLoader{}
	}
	return &YAMLLoader{}
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(tail); i++ {
		a, b := tail[i], suffix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
