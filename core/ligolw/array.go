package ligolw

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// Dim describes one dimension of an Array. Unit, Start and Scale are the
// raw attribute values, nil when the attribute is absent.
type Dim struct {
	N     int
	Name  string
	Unit  *string
	Start *string
	Scale *string
}

// ScaleFloat parses the Scale attribute, typically the sample spacing.
func (d Dim) ScaleFloat() (float64, error) {
	if d.Scale == nil {
		return 0, errors.NewMalformed("Dim", d.Name, "Scale", "missing Scale")
	}
	v, err := parseReal(*d.Scale, 64)
	if err != nil {
		return 0, &errors.MalformedError{Element: "Dim", Name: d.Name, Attribute: "Scale", Message: "not a number", Err: err}
	}
	return v, nil
}

// Array is a decoded Array element. The element data is held in a flat
// little-endian buffer, row-major in Dim declaration order.
type Array struct {
	Name      string
	Type      CellType
	Delimiter byte
	Dims      []Dim

	data []byte
}

// DecodeArray decodes an Array element. Only numeric element types are
// accepted. An Array without a Stream child decodes to metadata only, with
// nil Data.
func DecodeArray(elem *xml.Node) (*Array, error) {
	if elem == nil {
		return nil, errors.NewNotFound("Array", "")
	}
	a := &Array{Name: elementName(elem.Attr("Name"), "array")}

	typeName, _ := elem.LookupAttr("Type")
	a.Type = ParseCellType(typeName)
	switch {
	case a.Type == TypeUnknown:
		return nil, errors.NewMalformed("Array", a.Name, "Type", fmt.Sprintf("unknown type %q", typeName))
	case !a.Type.IsNumeric():
		return nil, &errors.MalformedError{
			Element:   "Array",
			Name:      a.Name,
			Attribute: "Type",
			Message:   fmt.Sprintf("element type %v", a.Type),
			Err:       errors.NewUnsupported("array element type", "only numeric types are supported"),
		}
	}

	count := 1
	for _, dim := range elem.ChildrenNamed("Dim") {
		d, err := decodeDim(dim, a.Name)
		if err != nil {
			return nil, err
		}
		if d.N > 0 && count > math.MaxInt/a.Type.Size()/d.N {
			return nil, errors.NewMalformed("Array", a.Name, "", "dimensions too large")
		}
		count *= d.N
		a.Dims = append(a.Dims, d)
	}

	stream := elem.Child("Stream")
	if stream == nil {
		return a, nil
	}
	delim, err := streamDelimiter(stream, a.Name)
	if err != nil {
		return nil, err
	}
	a.Delimiter = delim

	width := a.Type.Size()
	a.data = make([]byte, count*width)
	text := stream.Text()
	n := 0
	if trimSpace(text) != "" {
		for tok := NewTokenizer(text, delim); !tok.Done(); n++ {
			token := tok.Next()
			if n >= count {
				return nil, errors.NewMalformed("Stream", a.Name, "",
					fmt.Sprintf("more than the %d elements the dimensions declare", count))
			}
			if err := putElement(a.data[n*width:], a.Type, token); err != nil {
				return nil, &errors.MalformedError{
					Element: "Stream",
					Name:    a.Name,
					Message: fmt.Sprintf("element %d: cannot decode %q as %v", n, token, a.Type),
					Err:     err,
				}
			}
		}
	}
	if n != count {
		return nil, errors.NewMalformed("Stream", a.Name, "",
			fmt.Sprintf("stream has %d elements, dimensions declare %d", n, count))
	}
	return a, nil
}

func decodeDim(dim *xml.Node, array string) (Dim, error) {
	var d Dim
	if name, ok := dim.LookupAttr("Name"); ok {
		d.Name = elementName(name, "dim")
	}
	n, err := parseInt(dim.Text())
	if err != nil {
		return Dim{}, &errors.MalformedError{Element: "Dim", Name: d.Name, Message: "size of array " + array, Err: err}
	}
	if n < 0 || n > math.MaxInt32 {
		return Dim{}, errors.NewMalformed("Dim", d.Name, "", fmt.Sprintf("size %d out of range", n))
	}
	d.N = int(n)
	d.Unit = optionalAttr(dim, "Unit")
	d.Start = optionalAttr(dim, "Start")
	d.Scale = optionalAttr(dim, "Scale")
	return d, nil
}

func optionalAttr(n *xml.Node, name string) *string {
	if v, ok := n.LookupAttr(name); ok {
		return &v
	}
	return nil
}

// putElement decodes token as t and stores it little-endian at the start
// of buf. 4-byte reals and complex parts are parsed at single precision.
func putElement(buf []byte, t CellType, token string) error {
	le := binary.LittleEndian
	switch t {
	case TypeInt2S, TypeInt4S, TypeInt8S:
		v, err := parseInt(token)
		if err != nil {
			return err
		}
		switch t {
		case TypeInt2S:
			le.PutUint16(buf, uint16(v))
		case TypeInt4S:
			le.PutUint32(buf, uint32(v))
		default:
			le.PutUint64(buf, uint64(v))
		}
	case TypeInt2U, TypeInt4U, TypeInt8U:
		v, err := parseUint(token)
		if err != nil {
			return err
		}
		switch t {
		case TypeInt2U:
			le.PutUint16(buf, uint16(v))
		case TypeInt4U:
			le.PutUint32(buf, uint32(v))
		default:
			le.PutUint64(buf, v)
		}
	case TypeReal4:
		v, err := parseReal(token, 32)
		if err != nil {
			return err
		}
		le.PutUint32(buf, math.Float32bits(float32(v)))
	case TypeReal8:
		v, err := parseReal(token, 64)
		if err != nil {
			return err
		}
		le.PutUint64(buf, math.Float64bits(v))
	case TypeComplex8:
		v, err := parseComplex(token, 32)
		if err != nil {
			return err
		}
		le.PutUint32(buf, math.Float32bits(float32(real(v))))
		le.PutUint32(buf[4:], math.Float32bits(float32(imag(v))))
	case TypeComplex16:
		v, err := parseComplex(token, 64)
		if err != nil {
			return err
		}
		le.PutUint64(buf, math.Float64bits(real(v)))
		le.PutUint64(buf[8:], math.Float64bits(imag(v)))
	default:
		return errors.ErrUnsupported
	}
	return nil
}

// Len returns the number of elements the dimensions declare.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	n := 1
	for _, d := range a.Dims {
		n *= d.N
	}
	return n
}

// Data returns the raw element buffer, or nil for a metadata-only array.
func (a *Array) Data() []byte {
	if a == nil {
		return nil
	}
	return a.data
}

// At returns element i of the flat buffer as a cell. It reports false for
// a metadata-only array or an index outside [0, Len()).
func (a *Array) At(i int) (Cell, bool) {
	if a == nil || a.data == nil || i < 0 || i >= a.Len() {
		return Cell{}, false
	}
	width := a.Type.Size()
	if (i+1)*width > len(a.data) {
		return Cell{}, false
	}
	b := a.data[i*width : (i+1)*width]
	le := binary.LittleEndian
	switch a.Type {
	case TypeInt2S:
		return IntCell(a.Type, int64(int16(le.Uint16(b)))), true
	case TypeInt4S:
		return IntCell(a.Type, int64(int32(le.Uint32(b)))), true
	case TypeInt8S:
		return IntCell(a.Type, int64(le.Uint64(b))), true
	case TypeInt2U:
		return UintCell(a.Type, uint64(le.Uint16(b))), true
	case TypeInt4U:
		return UintCell(a.Type, uint64(le.Uint32(b))), true
	case TypeInt8U:
		return UintCell(a.Type, le.Uint64(b)), true
	case TypeReal4:
		return RealCell(a.Type, float64(math.Float32frombits(le.Uint32(b)))), true
	case TypeReal8:
		return RealCell(a.Type, math.Float64frombits(le.Uint64(b))), true
	case TypeComplex8:
		re := math.Float32frombits(le.Uint32(b))
		im := math.Float32frombits(le.Uint32(b[4:]))
		return ComplexCell(a.Type, complex(float64(re), float64(im))), true
	case TypeComplex16:
		re := math.Float64frombits(le.Uint64(b))
		im := math.Float64frombits(le.Uint64(b[8:]))
		return ComplexCell(a.Type, complex(re, im)), true
	}
	return Cell{}, false
}

// Offset converts one coordinate per dimension into an index into the
// flat buffer.
func (a *Array) Offset(coords ...int) (int, error) {
	if len(coords) != len(a.Dims) {
		return 0, errors.NewValidation("coords", fmt.Sprintf("got %d coordinates for %d dimensions", len(coords), len(a.Dims)))
	}
	off := 0
	for i, c := range coords {
		if c < 0 || c >= a.Dims[i].N {
			return 0, errors.NewValidation("coords", fmt.Sprintf("coordinate %d out of range [0,%d)", c, a.Dims[i].N))
		}
		off = off*a.Dims[i].N + c
	}
	return off, nil
}

// Release drops the array's dimensions and data.
func (a *Array) Release() {
	if a == nil {
		return
	}
	a.Dims = nil
	a.data = nil
}

// Number is the set of Go types an Array's elements can be copied into.
type Number interface {
	int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64 | complex64 | complex128
}

// ArrayValues copies the elements of a into a slice of T, which must be
// the Go type matching a.Type. A metadata-only array yields nil.
func ArrayValues[T Number](a *Array) ([]T, error) {
	if a == nil || a.data == nil {
		return nil, nil
	}
	var probe T
	if err := WriteNative(Cell{typ: a.Type}, a.Type, &probe); err != nil {
		return nil, err
	}
	out := make([]T, a.Len())
	for i := range out {
		c, ok := a.At(i)
		if !ok {
			return nil, errors.NewMalformed("Array", a.Name, "", fmt.Sprintf("buffer holds fewer than %d elements", len(out)))
		}
		if err := WriteNative(c, a.Type, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
