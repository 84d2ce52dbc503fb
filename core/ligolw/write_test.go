package ligolw

import (
	"bytes"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

func TestTableWriteTo(t *testing.T) {
	table, err := DecodeTable(parseElem(t, testTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}

	var buf bytes.Buffer
	n, err := table.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	want := `<Table Name="test:table">
	<Column Name="test:a" Type="int_4s"/>
	<Column Name="test:b" Type="real_8"/>
	<Stream Name="test:table" Type="Local" Delimiter=",">
		1,2.5,
		2,3.5
	</Stream>
</Table>
`
	if buf.String() != want {
		t.Errorf("WriteTo =\n%s\nwant\n%s", buf.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo returned %d, wrote %d", n, len(want))
	}
}

func TestTableWriteToRoundTrip(t *testing.T) {
	table, err := DecodeTable(parseElem(t, processTable), nil)
	if err != nil {
		t.Fatalf("DecodeTable failed: %v", err)
	}
	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	again, err := DecodeTable(parseElem(t, buf.String()), nil)
	if err != nil {
		t.Fatalf("re-decode failed: %v\n%s", err, buf.String())
	}
	if again.Name != table.Name || len(again.Columns) != len(table.Columns) || len(again.Rows) != len(table.Rows) {
		t.Fatalf("re-decoded shape differs: %+v", again)
	}
	for r := range table.Rows {
		for c := range table.Columns {
			if again.Rows[r].Cells[c] != table.Rows[r].Cells[c] {
				t.Errorf("row %d cell %d: %v != %v", r, c, again.Rows[r].Cells[c], table.Rows[r].Cells[c])
			}
		}
	}
}

func TestTableWriteToEscapesAttributes(t *testing.T) {
	table := &Table{Name: `a"b`, Delimiter: '<', Columns: []Column{{"x", TypeInt4S}}}
	var buf bytes.Buffer
	if _, err := table.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `Name="a&quot;b:table"`) || !strings.Contains(out, `Delimiter="&lt;"`) {
		t.Errorf("attributes not escaped:\n%s", out)
	}
}

func TestTableWriteToBlobColumn(t *testing.T) {
	table := &Table{Name: "b", Delimiter: ',', Columns: []Column{{"data", TypeBlob}}}
	if _, err := table.WriteTo(&bytes.Buffer{}); !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("blob column = %v", err)
	}
}
