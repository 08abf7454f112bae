package loader

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arlowgrid/cellwise/internal/workbook"
)

// yamlBook is the on-disk shape: a list of named sheets, each a flat
// map from cell id to raw input text.
type yamlBook struct {
	Sheets []yamlSheet `yaml:"sheets"`
}

type yamlSheet struct {
	Name  string            `yaml:"name"`
	Cells map[string]string `yaml:"cells"`
}

// YAMLLoader reads and writes workbooks as YAML using gopkg.in/yaml.v3.
type YAMLLoader struct{}

// Load implements Loader.
func (YAMLLoader) Load(path string) (*workbook.Book, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yamlBook
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	book := workbook.New()
	for _, ys := range doc.Sheets {
		sheet := book.Sheet(ys.Name)
		for id, raw := range ys.Cells {
			sheet.Cell(id).RawInput = raw
		}
	}
	return book, nil
}

// Save implements Loader.
func (YAMLLoader) Save(book *workbook.Book, path string) error {
	var doc yamlBook
	for _, name := range book.SheetNames() {
		sheet, _ := book.LookupSheet(name)
		cells := make(map[string]string, len(sheet.Cells))
		for _, id := range sheet.CellIDs() {
			cells[id] = sheet.Cells[id].RawInput
		}
		doc.Sheets = append(doc.Sheets, yamlSheet{Name: name, Cells: cells})
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
