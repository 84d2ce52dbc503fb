package ligolw

import (
	"bytes"
	"fmt"
	"io"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// WriteTo writes t as a Table element: one Column per column and a Local
// Stream holding the rows. Rows are separated by the delimiter followed by
// a newline and two tabs. String cells are quoted but not escaped.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	name := t.Name + ":table"
	delim := string(t.Delimiter)
	if t.Delimiter == 0 {
		delim = ","
	}

	fmt.Fprintf(&buf, "<Table Name=\"%s\">\n", xml.EscapeAttr(name))
	for _, col := range t.Columns {
		typeName, ok := col.Type.Name()
		if !ok {
			return 0, errors.NewUnsupported("column type "+col.Type.String(), "no wire spelling")
		}
		fmt.Fprintf(&buf, "\t<Column Name=\"%s\" Type=\"%s\"/>\n",
			xml.EscapeAttr(t.Name+":"+col.Name), typeName)
	}
	fmt.Fprintf(&buf, "\t<Stream Name=\"%s\" Type=\"Local\" Delimiter=\"%s\">\n",
		xml.EscapeAttr(name), xml.EscapeAttr(delim))

	for r, row := range t.Rows {
		if r > 0 {
			buf.WriteString(delim)
			buf.WriteString("\n")
		}
		buf.WriteString("\t\t")
		for c, col := range t.Columns {
			if c > 0 {
				buf.WriteString(delim)
			}
			s, err := EncodeCell(row.Cells[c], col.Type)
			if err != nil {
				return 0, errors.Wrapf(err, "row %d, column %q", r, col.Name)
			}
			buf.WriteString(s)
		}
	}
	buf.WriteString("\n\t</Stream>\n</Table>\n")

	return buf.WriteTo(w)
}
