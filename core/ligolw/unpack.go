package ligolw

import (
	"github.com/FocuswithJustin/ligolw/core/errors"
)

// UnpackField names one column to extract from a row. Dest must be a
// pointer of the Go type WriteNative expects for Type, or nil to check the
// column's presence and type without extracting it.
type UnpackField struct {
	Dest     any
	Name     string
	Type     CellType
	Required bool
}

// UnpackSpec is an ordered list of columns to extract.
type UnpackSpec []UnpackField

// Unpack copies the columns named by spec from row into their destinations,
// processing entries in order.
//
// A required column the table lacks yields a *errors.SchemaMismatchError
// whose Code is the entry's 1-based position; a column whose type differs
// from the entry's yields the negated position. Optional absent columns are
// skipped, and table columns the spec does not name are ignored. A row
// with fewer cells than its table has columns reads the missing ones as
// zero, as a short final Stream row does.
func Unpack(row Row, spec UnpackSpec) error {
	for i, f := range spec {
		c, typ, ok := row.Table.Column(f.Name)
		if !ok {
			if !f.Required {
				continue
			}
			return &errors.SchemaMismatchError{Index: i + 1, Column: f.Name, Missing: true}
		}
		if typ != f.Type {
			return &errors.SchemaMismatchError{
				Index:    i + 1,
				Column:   f.Name,
				Expected: f.Type.String(),
				Actual:   typ.String(),
			}
		}
		if f.Dest == nil {
			continue
		}
		cell := Cell{typ: typ}
		if c < len(row.Cells) {
			cell = row.Cells[c]
		}
		if err := WriteNative(cell, typ, f.Dest); err != nil {
			return errors.Wrapf(err, "unpacking column %q", f.Name)
		}
	}
	return nil
}

// UnpackStrict is Unpack, additionally failing with *errors.ExtraColumnsError
// when the row's table has columns that no spec entry names.
func UnpackStrict(row Row, spec UnpackSpec) error {
	if err := Unpack(row, spec); err != nil {
		return err
	}
	if row.Table == nil {
		return nil
	}
	named := make(map[string]bool, len(spec))
	for _, f := range spec {
		named[f.Name] = true
	}
	var extra []string
	for _, col := range row.Table.Columns {
		if !named[col.Name] {
			extra = append(extra, col.Name)
		}
	}
	if len(extra) > 0 {
		return &errors.ExtraColumnsError{Columns: extra}
	}
	return nil
}

// UnpackingRowFunc returns a RowFunc that unpacks every row into a fresh
// *T and hands it to sink. fields builds the spec for one record, pointing
// each Dest into it. The row itself is not retained.
func UnpackingRowFunc[T any](fields func(*T) UnpackSpec, sink func(*T) error) RowFunc {
	return func(_ *Table, row Row) error {
		rec := new(T)
		if err := Unpack(row, fields(rec)); err != nil {
			return err
		}
		return sink(rec)
	}
}
