package ligolw

import (
	"testing"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

func TestDecodeParam(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		typ  CellType
		want any
	}{
		{"real_8", `<Param Name="f0:param" Type="real_8">100.0</Param>`, TypeReal8, 100.0},
		{"default type", `<Param Name="instrument:param">H1</Param>`, TypeLString, "H1"},
		{"string kept raw", `<Param Name="comment:param" Type="lstring"> a b </Param>`, TypeLString, " a b "},
		{"padded integer", "<Param Name=\"n:param\" Type=\"int_8s\">\n\t42\n</Param>", TypeInt8S, int64(42)},
		{"alias", `<Param Name="x:param" Type="double">-0.5</Param>`, TypeReal8, -0.5},
		{"empty numeric", `<Param Name="z:param" Type="int_4u"></Param>`, TypeInt4U, uint64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeParam(parseElem(t, tt.xml))
			if err != nil {
				t.Fatalf("DecodeParam failed: %v", err)
			}
			if c.Type() != tt.typ {
				t.Errorf("type = %v, want %v", c.Type(), tt.typ)
			}
			if c.Value() != tt.want {
				t.Errorf("value = %#v, want %#v", c.Value(), tt.want)
			}
		})
	}
}

func TestDecodeParamErrors(t *testing.T) {
	if _, err := DecodeParam(nil); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DecodeParam(nil) = %v", err)
	}
	if _, err := DecodeParam(parseElem(t, `<Param Name="x:param" Type="nope">1</Param>`)); !errors.Is(err, errors.ErrMalformed) {
		t.Errorf("unknown type = %v", err)
	}
	if _, err := DecodeParam(parseElem(t, `<Param Name="x:param" Type="real_8">fast</Param>`)); !errors.Is(err, errors.ErrMalformed) {
		t.Errorf("bad value = %v", err)
	}
}

func TestParamAs(t *testing.T) {
	elem := parseElem(t, `<Param Name="f0:param" Type="real_8">100.0</Param>`)

	var f0 float64
	if err := ParamAs(elem, TypeReal8, &f0); err != nil || f0 != 100.0 {
		t.Errorf("ParamAs = %v, %v", f0, err)
	}

	var n int32
	if err := ParamAs(elem, TypeInt4S, &n); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("type mismatch = %v", err)
	}
	if err := ParamAs(nil, TypeReal8, &f0); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("nil element = %v", err)
	}
}

func TestDecodeTime(t *testing.T) {
	tm, err := DecodeTime(parseElem(t, `<Time Name="epoch" Type="GPS"> 1000000000.5 </Time>`))
	if err != nil {
		t.Fatalf("DecodeTime failed: %v", err)
	}
	if tm != (Time{Name: "epoch", Type: "GPS", Value: "1000000000.5"}) {
		t.Errorf("DecodeTime = %+v", tm)
	}

	if _, err := DecodeTime(parseElem(t, `<Time Name="epoch">0</Time>`)); !errors.Is(err, errors.ErrMalformed) {
		t.Errorf("missing Type = %v", err)
	}
	if _, err := DecodeTime(nil); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("DecodeTime(nil) = %v", err)
	}
}
