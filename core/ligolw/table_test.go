package ligolw

import (
	"fmt"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

const testTable = `<Table Name="test:table">
	<Column Name="test:a" Type="int_4s"/>
	<Column Name="test:b" Type="real_8"/>
	<Stream Name="test:table" Type="Local" Delimiter=",">1,2.5,2,3.5</Stream>
</Table>`

const processTable = `<Table Name="process:table">
	<Column Name="process:program" Type="lstring"/>
	<Column Name="process:version" Type="lstring"/>
	<Column Name="process:ifos" Type="lstring"/>
	<Column Name="process:start_time" Type="int_4s"/>
	<Column Name="process:process_id" Type="int_8s"/>
	<Stream Name="process:table" Type="Local" Delimiter=",">
		"lalapps_power","1.2, beta","H1,L1",815901601,0,
		"ligolw_add","",,815901700,1
	</Stream>
</Table>`

func TestDecodeTable(t *testing.T) {
	table, err := DecodeTable(parseElem(t, testTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}

	if table.Name != "test" {
		t.Errorf("Name = %q, want test", table.Name)
	}
	if table.Delimiter != ',' {
		t.Errorf("Delimiter = %q", table.Delimiter)
	}
	wantCols := []Column{{"a", TypeInt4S}, {"b", TypeReal8}}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("got %d columns", len(table.Columns))
	}
	for i, col := range wantCols {
		if table.Columns[i] != col {
			t.Errorf("column %d = %+v, want %+v", i, table.Columns[i], col)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	want := []struct {
		a int64
		b float64
	}{{1, 2.5}, {2, 3.5}}
	for i, w := range want {
		row := table.Rows[i]
		if row.Table != table {
			t.Errorf("row %d has the wrong table back-reference", i)
		}
		if got := row.Cells[0].Int(); got != w.a {
			t.Errorf("row %d a = %d, want %d", i, got, w.a)
		}
		if got := row.Cells[1].Float(); got != w.b {
			t.Errorf("row %d b = %v, want %v", i, got, w.b)
		}
	}
}

func TestDecodeTableStrings(t *testing.T) {
	table, err := DecodeTable(parseElem(t, processTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}

	tests := []struct {
		row    int
		column string
		want   string
	}{
		{0, "program", "lalapps_power"},
		{0, "version", "1.2, beta"},
		{0, "ifos", "H1,L1"},
		{1, "program", "ligolw_add"},
		{1, "version", ""},
		{1, "ifos", ""},
	}
	for _, tt := range tests {
		cell, ok := table.Rows[tt.row].Cell(tt.column)
		if !ok {
			t.Errorf("row %d: no column %q", tt.row, tt.column)
			continue
		}
		if cell.Text() != tt.want {
			t.Errorf("row %d %s = %q, want %q", tt.row, tt.column, cell.Text(), tt.want)
		}
	}

	id, _ := table.Rows[1].Cell("process_id")
	if id.Int() != 1 {
		t.Errorf("process_id = %d", id.Int())
	}
	if _, ok := table.Rows[0].Cell("missing"); ok {
		t.Error("Cell(missing) reported present")
	}
}

// A table of R rows and C columns decodes to exactly R rows of C cells,
// each cell typed by its column.
func TestDecodeTableShape(t *testing.T) {
	types := []string{"int_2s", "int_8u", "real_4", "lstring", "complex_16", "ilwd:char"}
	values := []string{"-3", "18", "0.5", `"s"`, "1+i1", `"t:id:0"`}
	const rows = 7

	var b strings.Builder
	b.WriteString(`<Table Name="shape:table">`)
	for i, typ := range types {
		fmt.Fprintf(&b, `<Column Name="shape:c%d" Type="%s"/>`, i, typ)
	}
	b.WriteString(`<Stream Name="shape:table" Type="Local" Delimiter=",">`)
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(",\n\t\t")
		}
		b.WriteString(strings.Join(values, ","))
	}
	b.WriteString(`</Stream></Table>`)

	table, err := DecodeTable(parseElem(t, b.String()), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	if len(table.Rows) != rows {
		t.Fatalf("got %d rows, want %d", len(table.Rows), rows)
	}
	for r, row := range table.Rows {
		if len(row.Cells) != len(table.Columns) {
			t.Fatalf("row %d has %d cells, want %d", r, len(row.Cells), len(table.Columns))
		}
		for i, cell := range row.Cells {
			if cell.Type() != table.Columns[i].Type {
				t.Errorf("row %d cell %d type %v, column type %v", r, i, cell.Type(), table.Columns[i].Type)
			}
		}
	}
}

func TestDecodeTableEmpty(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		cols int
	}{
		{"no stream", `<Table Name="s:table"><Column Name="s:a" Type="int_4s"/></Table>`, 1},
		{"empty stream", `<Table Name="s:table"><Column Name="s:a" Type="int_4s"/><Stream Delimiter=","></Stream></Table>`, 1},
		{"blank stream", "<Table Name=\"s:table\"><Column Name=\"s:a\" Type=\"int_4s\"/><Stream Delimiter=\",\">\n\t\t\n\t</Stream></Table>", 1},
		{"no columns no stream", `<Table Name="s:table"/>`, 0},
		{"no columns blank stream", `<Table Name="s:table"><Stream Delimiter=","> </Stream></Table>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := DecodeTable(parseElem(t, tt.xml), nil)
			if err != nil {
				t.Fatalf("DecodeTable failed: %v", err)
			}
			if len(table.Rows) != 0 {
				t.Errorf("got %d rows, want 0", len(table.Rows))
			}
			if len(table.Columns) != tt.cols {
				t.Errorf("got %d columns, want %d", len(table.Columns), tt.cols)
			}
		})
	}
}

func TestDecodeTableMalformed(t *testing.T) {
	tests := []struct {
		name     string
		xml      string
		contains string
	}{
		{
			"unknown column type",
			`<Table Name="m:table"><Column Name="m:weird" Type="quaternion"/></Table>`,
			"m:weird",
		},
		{
			"missing column type",
			`<Table Name="m:table"><Column Name="m:untyped"/></Table>`,
			"m:untyped",
		},
		{
			"missing delimiter",
			`<Table Name="m:table"><Column Name="m:a" Type="int_4s"/><Stream>1</Stream></Table>`,
			"Delimiter",
		},
		{
			"empty delimiter",
			`<Table Name="m:table"><Column Name="m:a" Type="int_4s"/><Stream Delimiter="">1</Stream></Table>`,
			"Delimiter",
		},
		{
			"content without columns",
			`<Table Name="m:table"><Stream Delimiter=",">1,2</Stream></Table>`,
			"no columns",
		},
		{
			"bad cell",
			`<Table Name="m:table"><Column Name="m:a" Type="int_4s"/><Stream Delimiter=",">1,x,3</Stream></Table>`,
			`row 1, column "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := DecodeTable(parseElem(t, tt.xml), nil)
			if err == nil {
				t.Fatal("DecodeTable should fail")
			}
			if table != nil {
				t.Error("failed decode returned a table")
			}
			if !errors.Is(err, errors.ErrMalformed) {
				t.Errorf("error %v is not ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not mention %q", err, tt.contains)
			}
		})
	}
}

func TestDecodeTableNil(t *testing.T) {
	if _, err := DecodeTable(nil, nil); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DecodeTable(nil) error = %v", err)
	}
}

// A short final row is padded with empty cells, which decode to zero.
func TestDecodeTableShortFinalRow(t *testing.T) {
	table, err := DecodeTable(parseElem(t, strings.Replace(testTable, "1,2.5,2,3.5", "1,2.5,2", 1)), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows", len(table.Rows))
	}
	if b := table.Rows[1].Cells[1].Float(); b != 0 {
		t.Errorf("padded cell = %v, want 0", b)
	}
}

func TestDecodeTableCallback(t *testing.T) {
	var seen []int64
	table, err := DecodeTable(parseElem(t, testTable), func(tbl *Table, row Row) error {
		if row.Table != tbl {
			return fmt.Errorf("row delivered with the wrong table")
		}
		seen = append(seen, row.Cells[0].Int())
		return nil
	})
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("custom callback rows were retained: %d", len(table.Rows))
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("callback saw %v", seen)
	}
}

func TestDecodeTableCallbackAbort(t *testing.T) {
	cause := fmt.Errorf("disk full")
	var kept *Table
	calls := 0
	table, err := DecodeTable(parseElem(t, testTable), func(tbl *Table, row Row) error {
		kept = tbl
		calls++
		if calls == 2 {
			return cause
		}
		return AppendRow(tbl, row)
	})

	if table != nil {
		t.Error("aborted decode returned a table")
	}
	if !errors.Is(err, errors.ErrCallbackAbort) {
		t.Fatalf("error %v is not ErrCallbackAbort", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error %v does not wrap the callback error", err)
	}
	var abort *errors.CallbackAbortError
	if !errors.As(err, &abort) {
		t.Fatalf("error %T is not *CallbackAbortError", err)
	}
	if abort.Row != 1 || abort.Table != "test" {
		t.Errorf("abort = %+v", abort)
	}
	if kept == nil || kept.Rows != nil {
		t.Error("rows built before the abort were not released")
	}
}

func TestTableRows(t *testing.T) {
	table, rows, err := TableRows(parseElem(t, processTable))
	if err != nil {
		t.Fatalf("TableRows failed: %v", err)
	}
	if len(table.Columns) != 5 {
		t.Errorf("columns decoded eagerly: got %d", len(table.Columns))
	}

	var programs []string
	for row, err := range rows {
		if err != nil {
			t.Fatalf("row error: %v", err)
		}
		cell, _ := row.Cell("program")
		programs = append(programs, cell.Text())
	}
	if strings.Join(programs, " ") != "lalapps_power ligolw_add" {
		t.Errorf("programs = %v", programs)
	}
	if len(table.Rows) != 0 {
		t.Error("pulled rows should not be retained by the table")
	}

	// Stopping early is allowed.
	n := 0
	for range rows {
		n++
		break
	}
	if n != 1 {
		t.Errorf("early break consumed %d rows", n)
	}
}

func TestTableRowsMalformedRow(t *testing.T) {
	elem := parseElem(t, strings.Replace(testTable, "2,3.5", "2,oops", 1))
	_, rows, err := TableRows(elem)
	if err != nil {
		t.Fatalf("TableRows failed: %v", err)
	}
	var good int
	var rowErr error
	for _, err := range rows {
		if err != nil {
			rowErr = err
			break
		}
		good++
	}
	if good != 1 {
		t.Errorf("got %d good rows before the error, want 1", good)
	}
	if !errors.Is(rowErr, errors.ErrMalformed) {
		t.Errorf("row error = %v", rowErr)
	}
}

func TestTableColumn(t *testing.T) {
	table, err := DecodeTable(parseElem(t, processTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	i, typ, ok := table.Column("start_time")
	if !ok || i != 3 || typ != TypeInt4S {
		t.Errorf("Column(start_time) = %d, %v, %v", i, typ, ok)
	}
	if i, typ, ok := table.Column("nope"); ok || i != -1 || typ != TypeUnknown {
		t.Errorf("Column(nope) = %d, %v, %v", i, typ, ok)
	}
	var nilTable *Table
	if _, _, ok := nilTable.Column("a"); ok {
		t.Error("nil table reported a column")
	}
}

func TestTableRelease(t *testing.T) {
	table, err := DecodeTable(parseElem(t, testTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	table.Release()
	if table.Rows != nil || table.Columns != nil {
		t.Error("Release left rows or columns behind")
	}
	var nilTable *Table
	nilTable.Release()
}
