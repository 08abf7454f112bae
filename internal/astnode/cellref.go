package astnode

import (
	"strconv"
	"strings"
)

// columnLetter renders a zero-based column index as spreadsheet letters,
// duplicated locally (rather than importing internal/value) to keep
// astnode dependency-free of the value package's coercion concerns.
func columnLetter(index int) string {
	index++
	var out []byte
	for index > 0 {
		index--
		out = append([]byte{byte('A' + index%26)}, out...)
		index /= 26
	}
	return string(out)
}

func (n *CellRefNode) withoutSheet() string {
	var b strings.Builder
	if n.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(columnLetter(n.Column))
	if n.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(n.Row + 1))
	return b.String()
}

func (n *CellRefNode) prettyRef() string {
	if n.Sheet == "" {
		return n.withoutSheet()
	}
	return n.Sheet + "!" + n.withoutSheet()
}
