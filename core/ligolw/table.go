package ligolw

import (
	"fmt"
	"iter"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// Column is one declared column of a Table. Name is the final segment of
// the Column element's Name attribute.
type Column struct {
	Name string
	Type CellType
}

// Table is a decoded Table element. A Table owns its Columns and Rows.
type Table struct {
	Name      string
	Delimiter byte
	Columns   []Column
	Rows      []Row
}

// Row is one tuple of cells aligned with its table's columns:
// len(Cells) == len(Table.Columns) and Cells[i].Type() == Columns[i].Type.
type Row struct {
	Table *Table
	Cells []Cell
}

// RowFunc receives each decoded row. The row belongs to the callback from
// the moment it is called; it is not retained unless the callback keeps it.
// Returning a non-nil error aborts the decode.
type RowFunc func(t *Table, row Row) error

// AppendRow is the default RowFunc. It appends row to t.Rows.
func AppendRow(t *Table, row Row) error {
	t.Rows = append(t.Rows, row)
	return nil
}

// DecodeTable decodes a Table element, passing each row to fn in stream
// order. A nil fn selects AppendRow.
//
// A Table without a Stream child decodes to a table with no rows. If fn
// fails, every row decoded so far is released and a
// *errors.CallbackAbortError carrying the row index is returned.
func DecodeTable(elem *xml.Node, fn RowFunc) (*Table, error) {
	t, rows, err := TableRows(elem)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		fn = AppendRow
	}

	i := 0
	for row, err := range rows {
		if err != nil {
			t.Release()
			return nil, err
		}
		if err := fn(t, row); err != nil {
			t.Release()
			return nil, &errors.CallbackAbortError{Table: t.Name, Row: i, Err: err}
		}
		i++
	}
	return t, nil
}

// TableRows decodes a Table element's columns and returns a sequence that
// decodes its rows on demand. Each row yielded belongs to the consumer. The
// sequence stops after the first malformed row, which is yielded with a
// non-nil error, or when the consumer stops ranging.
func TableRows(elem *xml.Node) (*Table, iter.Seq2[Row, error], error) {
	if elem == nil {
		return nil, nil, errors.NewNotFound("Table", "")
	}

	t := &Table{Name: elementName(elem.Attr("Name"), "table")}
	for _, col := range elem.ChildrenNamed("Column") {
		name := col.Attr("Name")
		typeName, _ := col.LookupAttr("Type")
		typ := ParseCellType(typeName)
		if typ == TypeUnknown {
			return nil, nil, errors.NewMalformed("Column", name, "Type",
				fmt.Sprintf("unknown type %q in table %q", typeName, t.Name))
		}
		t.Columns = append(t.Columns, Column{Name: columnName(name), Type: typ})
	}

	stream := elem.Child("Stream")
	if stream == nil {
		return t, noRows, nil
	}
	delim, err := streamDelimiter(stream, t.Name)
	if err != nil {
		return nil, nil, err
	}
	t.Delimiter = delim

	text := stream.Text()
	if trimSpace(text) == "" {
		return t, noRows, nil
	}
	if len(t.Columns) == 0 {
		return nil, nil, errors.NewMalformed("Stream", t.Name, "",
			"stream has content but the table declares no columns")
	}

	rows := func(yield func(Row, error) bool) {
		tok := NewTokenizer(text, t.Delimiter)
		for i := 0; !tok.Done(); i++ {
			cells, err := t.decodeRow(tok, i)
			if err != nil {
				yield(Row{}, err)
				return
			}
			if !yield(Row{Table: t, Cells: cells}, nil) {
				return
			}
		}
	}
	return t, rows, nil
}

func noRows(func(Row, error) bool) {}

func streamDelimiter(stream *xml.Node, owner string) (byte, error) {
	delim, ok := stream.LookupAttr("Delimiter")
	if !ok || delim == "" {
		return 0, errors.NewMalformed("Stream", owner, "Delimiter", "missing delimiter")
	}
	return delim[0], nil
}

// decodeRow consumes exactly one token per column.
func (t *Table) decodeRow(tok *Tokenizer, index int) ([]Cell, error) {
	cells := make([]Cell, len(t.Columns))
	for i, col := range t.Columns {
		cell, err := DecodeCell(col.Type, tok.Next())
		if err != nil {
			return nil, &errors.MalformedError{
				Element: "Stream",
				Name:    t.Name,
				Message: fmt.Sprintf("row %d, column %q", index, col.Name),
				Err:     err,
			}
		}
		cells[i] = cell
	}
	return cells, nil
}

// Column returns the index and type of the named column.
func (t *Table) Column(name string) (int, CellType, bool) {
	if t == nil {
		return -1, TypeUnknown, false
	}
	for i, col := range t.Columns {
		if col.Name == name {
			return i, col.Type, true
		}
	}
	return -1, TypeUnknown, false
}

// Release drops the table's rows and columns.
func (t *Table) Release() {
	if t == nil {
		return
	}
	for i := range t.Rows {
		t.Rows[i].Cells = nil
	}
	t.Rows = nil
	t.Columns = nil
}

// Cell returns the cell of the named column.
func (r Row) Cell(name string) (Cell, bool) {
	i, _, ok := r.Table.Column(name)
	if !ok || i >= len(r.Cells) {
		return Cell{}, false
	}
	return r.Cells[i], true
}
