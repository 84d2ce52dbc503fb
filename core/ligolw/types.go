package ligolw

import "fmt"

// CellType identifies one of the sixteen LIGOLW scalar types.
type CellType int8

// The cell types, in the order of the LIGOLW type enumeration.
const (
	TypeUnknown CellType = iota - 1
	TypeCharS
	TypeCharV
	TypeILWDChar
	TypeILWDCharU
	TypeBlob
	TypeLString
	TypeInt2S
	TypeInt2U
	TypeInt4S
	TypeInt4U
	TypeInt8S
	TypeInt8U
	TypeReal4
	TypeReal8
	TypeComplex8
	TypeComplex16

	numCellTypes = iota - 1
)

// SizeUndefined is the byte width reported for string and blob types.
const SizeUndefined = -1

// typeNames maps wire spellings to types. Aliases follow their canonical
// spelling so the first entry for a type is the one Name returns. Blob has
// no wire spelling.
var typeNames = [...]struct {
	name string
	typ  CellType
}{
	{"char_s", TypeCharS},
	{"char_v", TypeCharV},
	{"ilwd:char", TypeILWDChar},
	{"ilwd:char_u", TypeILWDCharU},
	{"lstring", TypeLString},
	{"string", TypeLString},
	{"int_2s", TypeInt2S},
	{"int_2u", TypeInt2U},
	{"int_4s", TypeInt4S},
	{"int", TypeInt4S},
	{"int_4u", TypeInt4U},
	{"int_8s", TypeInt8S},
	{"int_8u", TypeInt8U},
	{"real_4", TypeReal4},
	{"float", TypeReal4},
	{"real_8", TypeReal8},
	{"double", TypeReal8},
	{"complex_8", TypeComplex8},
	{"complex_16", TypeComplex16},
}

var typeSizes = [numCellTypes]int{
	TypeCharS:     SizeUndefined,
	TypeCharV:     SizeUndefined,
	TypeILWDChar:  SizeUndefined,
	TypeILWDCharU: SizeUndefined,
	TypeBlob:      SizeUndefined,
	TypeLString:   SizeUndefined,
	TypeInt2S:     2,
	TypeInt2U:     2,
	TypeInt4S:     4,
	TypeInt4U:     4,
	TypeInt8S:     8,
	TypeInt8U:     8,
	TypeReal4:     4,
	TypeReal8:     8,
	TypeComplex8:  8,
	TypeComplex16: 16,
}

// ParseCellType returns the type with the given wire spelling, or
// TypeUnknown.
func ParseCellType(name string) CellType {
	for _, n := range typeNames {
		if n.name == name {
			return n.typ
		}
	}
	return TypeUnknown
}

// Name returns the canonical wire spelling of t. ok is false for blob and
// for values outside the enumeration.
func (t CellType) Name() (name string, ok bool) {
	for _, n := range typeNames {
		if n.typ == t {
			return n.name, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (t CellType) String() string {
	if name, ok := t.Name(); ok {
		return name
	}
	if t == TypeBlob {
		return "blob"
	}
	return fmt.Sprintf("CellType(%d)", int8(t))
}

// IsValid reports whether t is one of the sixteen cell types.
func (t CellType) IsValid() bool {
	return t > TypeUnknown && t < numCellTypes
}

// Size returns the byte width of a value of type t, or SizeUndefined for
// string, blob and unknown types.
func (t CellType) Size() int {
	if !t.IsValid() {
		return SizeUndefined
	}
	return typeSizes[t]
}

// IsNumeric reports whether t is an integer, real or complex type.
func (t CellType) IsNumeric() bool {
	return t >= TypeInt2S && t <= TypeComplex16
}

// IsString reports whether t is one of the string or blob types.
func (t CellType) IsString() bool {
	return t >= TypeCharS && t <= TypeLString
}

func (t CellType) isSigned() bool {
	return t == TypeInt2S || t == TypeInt4S || t == TypeInt8S
}

func (t CellType) isUnsigned() bool {
	return t == TypeInt2U || t == TypeInt4U || t == TypeInt8U
}

func (t CellType) isReal() bool {
	return t == TypeReal4 || t == TypeReal8
}

func (t CellType) isComplex() bool {
	return t == TypeComplex8 || t == TypeComplex16
}
