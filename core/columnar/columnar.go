// Package columnar converts decoded LIGOLW tables to Apache Arrow records
// and back.
//
// Each column maps to the Arrow type of the same width. Complex columns
// become a struct of real and imag floats; blob columns become binary.
// The LIGOLW type name of every column is kept in field metadata under
// TypeKey, and the table name in schema metadata under TableKey, so a
// record converts back to a table with identical cell types.
package columnar

import (
	"fmt"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/ligolw"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Metadata keys.
const (
	TableKey = "ligolw.table"
	TypeKey  = "ligolw.type"
)

func complexOf(part arrow.DataType) *arrow.StructType {
	return arrow.StructOf(
		arrow.Field{Name: "real", Type: part},
		arrow.Field{Name: "imag", Type: part},
	)
}

// DataType returns the Arrow type used for cells of type t.
func DataType(t ligolw.CellType) (arrow.DataType, error) {
	switch t {
	case ligolw.TypeInt2S:
		return arrow.PrimitiveTypes.Int16, nil
	case ligolw.TypeInt2U:
		return arrow.PrimitiveTypes.Uint16, nil
	case ligolw.TypeInt4S:
		return arrow.PrimitiveTypes.Int32, nil
	case ligolw.TypeInt4U:
		return arrow.PrimitiveTypes.Uint32, nil
	case ligolw.TypeInt8S:
		return arrow.PrimitiveTypes.Int64, nil
	case ligolw.TypeInt8U:
		return arrow.PrimitiveTypes.Uint64, nil
	case ligolw.TypeReal4:
		return arrow.PrimitiveTypes.Float32, nil
	case ligolw.TypeReal8:
		return arrow.PrimitiveTypes.Float64, nil
	case ligolw.TypeComplex8:
		return complexOf(arrow.PrimitiveTypes.Float32), nil
	case ligolw.TypeComplex16:
		return complexOf(arrow.PrimitiveTypes.Float64), nil
	case ligolw.TypeBlob:
		return arrow.BinaryTypes.Binary, nil
	}
	if t.IsString() {
		return arrow.BinaryTypes.String, nil
	}
	return nil, errors.NewUnsupported("cell type", t.String())
}

// Schema returns the Arrow schema for table t.
func Schema(t *ligolw.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(t.Columns))
	for i, col := range t.Columns {
		dt, err := DataType(col.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", col.Name)
		}
		fields[i] = arrow.Field{
			Name:     col.Name,
			Type:     dt,
			Metadata: arrow.NewMetadata([]string{TypeKey}, []string{col.Type.String()}),
		}
	}
	md := arrow.NewMetadata([]string{TableKey}, []string{t.Name})
	return arrow.NewSchema(fields, &md), nil
}

// Converter builds Arrow records from decoded tables.
type Converter struct {
	allocator memory.Allocator
}

// NewConverter creates a Converter with the default memory allocator.
func NewConverter() *Converter {
	return &Converter{allocator: memory.DefaultAllocator}
}

// NewConverterWithAllocator creates a Converter that allocates from mem.
func NewConverterWithAllocator(mem memory.Allocator) *Converter {
	return &Converter{allocator: mem}
}

// TableToRecord converts t to a single Arrow record with one row per table
// row. The caller releases the record.
func (c *Converter) TableToRecord(t *ligolw.Table) (arrow.Record, error) {
	schema, err := Schema(t)
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(c.allocator, schema)
	defer builder.Release()
	builder.Reserve(len(t.Rows))

	for r, row := range t.Rows {
		if len(row.Cells) != len(t.Columns) {
			return nil, errors.NewValidation("row", fmt.Sprintf("row %d has %d cells, table has %d columns",
				r, len(row.Cells), len(t.Columns)))
		}
		for i, cell := range row.Cells {
			if err := appendCell(builder.Field(i), cell, t.Columns[i].Type); err != nil {
				return nil, errors.Wrapf(err, "row %d, column %q", r, t.Columns[i].Name)
			}
		}
	}
	return builder.NewRecord(), nil
}

func appendCell(b array.Builder, c ligolw.Cell, t ligolw.CellType) error {
	switch fb := b.(type) {
	case *array.Int16Builder:
		fb.Append(int16(c.Int()))
	case *array.Uint16Builder:
		fb.Append(uint16(c.Uint()))
	case *array.Int32Builder:
		fb.Append(int32(c.Int()))
	case *array.Uint32Builder:
		fb.Append(uint32(c.Uint()))
	case *array.Int64Builder:
		fb.Append(c.Int())
	case *array.Uint64Builder:
		fb.Append(c.Uint())
	case *array.Float32Builder:
		fb.Append(float32(c.Float()))
	case *array.Float64Builder:
		fb.Append(c.Float())
	case *array.StringBuilder:
		fb.Append(c.Text())
	case *array.BinaryBuilder:
		fb.Append(c.Blob())
	case *array.StructBuilder:
		fb.Append(true)
		v := c.Complex()
		if t == ligolw.TypeComplex8 {
			fb.FieldBuilder(0).(*array.Float32Builder).Append(float32(real(v)))
			fb.FieldBuilder(1).(*array.Float32Builder).Append(float32(imag(v)))
		} else {
			fb.FieldBuilder(0).(*array.Float64Builder).Append(real(v))
			fb.FieldBuilder(1).(*array.Float64Builder).Append(imag(v))
		}
	default:
		return errors.NewUnsupported("arrow builder", fmt.Sprintf("%T", b))
	}
	return nil
}

// RecordToTable converts a record produced by TableToRecord back to a
// decoded table. Columns without TypeKey metadata are rejected.
func RecordToTable(rec arrow.Record) (*ligolw.Table, error) {
	schema := rec.Schema()
	name, _ := schema.Metadata().GetValue(TableKey)
	t := &ligolw.Table{Name: name, Delimiter: ','}

	for _, f := range schema.Fields() {
		typeName, ok := f.Metadata.GetValue(TypeKey)
		if !ok {
			return nil, errors.NewValidation("field", fmt.Sprintf("field %q has no %s metadata", f.Name, TypeKey))
		}
		typ := ligolw.ParseCellType(typeName)
		if typeName == ligolw.TypeBlob.String() {
			typ = ligolw.TypeBlob
		}
		if typ == ligolw.TypeUnknown {
			return nil, errors.NewValidation("field", fmt.Sprintf("field %q has unknown type %q", f.Name, typeName))
		}
		t.Columns = append(t.Columns, ligolw.Column{Name: f.Name, Type: typ})
	}

	n := int(rec.NumRows())
	t.Rows = make([]ligolw.Row, n)
	for r := range t.Rows {
		t.Rows[r] = ligolw.Row{Table: t, Cells: make([]ligolw.Cell, len(t.Columns))}
	}
	for i, col := range t.Columns {
		values := rec.Column(i)
		for r := 0; r < n; r++ {
			cell, err := cellAt(values, r, col.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "column %q", col.Name)
			}
			t.Rows[r].Cells[i] = cell
		}
	}
	return t, nil
}

func cellAt(values arrow.Array, r int, t ligolw.CellType) (ligolw.Cell, error) {
	switch a := values.(type) {
	case *array.Int16:
		return ligolw.IntCell(t, int64(a.Value(r))), nil
	case *array.Uint16:
		return ligolw.UintCell(t, uint64(a.Value(r))), nil
	case *array.Int32:
		return ligolw.IntCell(t, int64(a.Value(r))), nil
	case *array.Uint32:
		return ligolw.UintCell(t, uint64(a.Value(r))), nil
	case *array.Int64:
		return ligolw.IntCell(t, a.Value(r)), nil
	case *array.Uint64:
		return ligolw.UintCell(t, a.Value(r)), nil
	case *array.Float32:
		return ligolw.RealCell(t, float64(a.Value(r))), nil
	case *array.Float64:
		return ligolw.RealCell(t, a.Value(r)), nil
	case *array.String:
		return ligolw.StringCell(t, a.Value(r)), nil
	case *array.Binary:
		return ligolw.StringCell(t, string(a.Value(r))), nil
	case *array.Struct:
		switch re := a.Field(0).(type) {
		case *array.Float32:
			im := a.Field(1).(*array.Float32)
			return ligolw.ComplexCell(t, complex(float64(re.Value(r)), float64(im.Value(r)))), nil
		case *array.Float64:
			im := a.Field(1).(*array.Float64)
			return ligolw.ComplexCell(t, complex(re.Value(r), im.Value(r))), nil
		}
	}
	return ligolw.Cell{}, errors.NewUnsupported("arrow array", values.DataType().String())
}
