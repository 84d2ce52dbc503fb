package ligolw

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

// Cell is one decoded scalar value tagged with its type.
//
// String and blob cells hold a substring of the Stream or element text they
// were decoded from; no copy is made.
type Cell struct {
	typ CellType
	i   int64
	u   uint64
	f   float64
	c   complex128
	s   string
}

// StringCell returns a cell of string or blob type t holding s.
func StringCell(t CellType, s string) Cell { return Cell{typ: t, s: s} }

// IntCell returns a cell of signed integer type t. v is narrowed to the
// width of t.
func IntCell(t CellType, v int64) Cell { return Cell{typ: t, i: narrowInt(t, v)} }

// UintCell returns a cell of unsigned integer type t. v is narrowed to the
// width of t.
func UintCell(t CellType, v uint64) Cell { return Cell{typ: t, u: narrowUint(t, v)} }

// RealCell returns a cell of real type t. real_4 values are rounded to
// single precision.
func RealCell(t CellType, v float64) Cell { return Cell{typ: t, f: narrowReal(t, v)} }

// ComplexCell returns a cell of complex type t. complex_8 parts are rounded
// to single precision.
func ComplexCell(t CellType, v complex128) Cell { return Cell{typ: t, c: narrowComplex(t, v)} }

// narrowInt truncates v to the declared width the way a C integer
// conversion does, so every reader of the cell sees the stored value.
func narrowInt(t CellType, v int64) int64 {
	switch t {
	case TypeInt2S:
		return int64(int16(v))
	case TypeInt4S:
		return int64(int32(v))
	}
	return v
}

func narrowUint(t CellType, v uint64) uint64 {
	switch t {
	case TypeInt2U:
		return uint64(uint16(v))
	case TypeInt4U:
		return uint64(uint32(v))
	}
	return v
}

func narrowReal(t CellType, v float64) float64 {
	if t == TypeReal4 {
		return float64(float32(v))
	}
	return v
}

func narrowComplex(t CellType, v complex128) complex128 {
	if t == TypeComplex8 {
		return complex128(complex64(v))
	}
	return v
}

// Type returns the cell's type tag.
func (c Cell) Type() CellType { return c.typ }

// Int returns the value of a signed integer cell.
func (c Cell) Int() int64 { return c.i }

// Uint returns the value of an unsigned integer cell.
func (c Cell) Uint() uint64 { return c.u }

// Float returns the value of a real cell.
func (c Cell) Float() float64 { return c.f }

// Complex returns the value of a complex cell.
func (c Cell) Complex() complex128 { return c.c }

// Text returns the value of a string cell.
func (c Cell) Text() string { return c.s }

// Blob returns the value of a blob cell.
func (c Cell) Blob() []byte { return []byte(c.s) }

// Value returns the cell's value as the widest Go type for its kind:
// int64, uint64, float64, complex128, string or []byte.
func (c Cell) Value() any {
	switch {
	case c.typ == TypeBlob:
		return c.Blob()
	case c.typ.IsString():
		return c.s
	case c.typ.isSigned():
		return c.i
	case c.typ.isUnsigned():
		return c.u
	case c.typ.isReal():
		return c.f
	case c.typ.isComplex():
		return c.c
	}
	return nil
}

// String implements fmt.Stringer using the LIGOLW text encoding.
func (c Cell) String() string {
	s, err := EncodeCell(c, c.typ)
	if err != nil {
		return fmt.Sprintf("<%v>", c.typ)
	}
	return s
}

// DecodeCell parses text as a value of type t.
//
// Integers are read as 64-bit values with C-style base detection ("0x" for
// hexadecimal, a leading "0" for octal) and then truncated to the declared
// width, so int_2s "70000" holds 4464. real_4 and complex_8 values are
// rounded to single precision. Complex values are written "<re>+i<im>": the real
// part is scanned as the longest numeric prefix, exactly two bytes are
// skipped, and the rest is the imaginary part. The two bytes are not
// inspected, so "1-i2" decodes as 1+2i.
//
// Empty numeric text decodes to zero. String types take text verbatim.
func DecodeCell(t CellType, text string) (Cell, error) {
	switch t {
	case TypeCharS, TypeCharV, TypeILWDChar, TypeILWDCharU, TypeBlob, TypeLString:
		return Cell{typ: t, s: text}, nil

	case TypeInt2S, TypeInt4S, TypeInt8S:
		v, err := parseInt(text)
		if err != nil {
			return Cell{}, cellError(t, text, err)
		}
		return IntCell(t, v), nil

	case TypeInt2U, TypeInt4U, TypeInt8U:
		v, err := parseUint(text)
		if err != nil {
			return Cell{}, cellError(t, text, err)
		}
		return UintCell(t, v), nil

	case TypeReal4, TypeReal8:
		v, err := parseReal(text, 64)
		if err != nil {
			return Cell{}, cellError(t, text, err)
		}
		return RealCell(t, v), nil

	case TypeComplex8, TypeComplex16:
		v, err := parseComplex(text, 64)
		if err != nil {
			return Cell{}, cellError(t, text, err)
		}
		return ComplexCell(t, v), nil
	}
	return Cell{}, errors.NewMalformed("cell", "", "Type", fmt.Sprintf("unknown cell type %v", t))
}

func cellError(t CellType, text string, err error) error {
	return &errors.MalformedError{
		Element: "cell",
		Message: fmt.Sprintf("cannot decode %q as %v", text, t),
		Err:     err,
	}
}

// EncodeCell formats c as type t following the LIGOLW text conventions:
// strings double-quoted verbatim, integers in plain decimal, 4-byte reals
// and complex parts with 7 significant digits, 8-byte ones with 16.
func EncodeCell(c Cell, t CellType) (string, error) {
	switch t {
	case TypeCharS, TypeCharV, TypeILWDChar, TypeILWDCharU, TypeBlob, TypeLString:
		return `"` + c.s + `"`, nil
	case TypeInt2S, TypeInt4S, TypeInt8S:
		return strconv.FormatInt(c.i, 10), nil
	case TypeInt2U, TypeInt4U, TypeInt8U:
		return strconv.FormatUint(c.u, 10), nil
	case TypeReal4:
		return formatReal(c.f, 7), nil
	case TypeReal8:
		return formatReal(c.f, 16), nil
	case TypeComplex8:
		return formatReal(real(c.c), 7) + "+i" + formatReal(imag(c.c), 7), nil
	case TypeComplex16:
		return formatReal(real(c.c), 16) + "+i" + formatReal(imag(c.c), 16), nil
	}
	return "", errors.NewMalformed("cell", "", "Type", fmt.Sprintf("unknown cell type %v", t))
}

// formatReal mirrors printf("%.<prec>g"), including its spelling of the
// non-finite values.
func formatReal(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// WriteNative stores c into dest, which must point to the Go type matching
// t: *int16, *uint16, *int32, *uint32, *int64, *uint64, *float32, *float64,
// *complex64, *complex128, *string, or *[]byte for blob.
func WriteNative(c Cell, t CellType, dest any) error {
	if !t.IsValid() {
		return errors.NewMalformed("cell", "", "Type", fmt.Sprintf("unknown cell type %v", t))
	}
	if isNilPointer(dest) {
		return errors.NewValidation("dest", "nil pointer")
	}
	ok := true
	switch p := dest.(type) {
	case *string:
		ok = t.IsString() && t != TypeBlob
		if ok {
			*p = c.s
		}
	case *[]byte:
		ok = t == TypeBlob
		if ok {
			*p = c.Blob()
		}
	case *int16:
		ok = t == TypeInt2S
		if ok {
			*p = int16(c.i)
		}
	case *uint16:
		ok = t == TypeInt2U
		if ok {
			*p = uint16(c.u)
		}
	case *int32:
		ok = t == TypeInt4S
		if ok {
			*p = int32(c.i)
		}
	case *uint32:
		ok = t == TypeInt4U
		if ok {
			*p = uint32(c.u)
		}
	case *int64:
		ok = t == TypeInt8S
		if ok {
			*p = c.i
		}
	case *uint64:
		ok = t == TypeInt8U
		if ok {
			*p = c.u
		}
	case *float32:
		ok = t == TypeReal4
		if ok {
			*p = float32(c.f)
		}
	case *float64:
		ok = t == TypeReal8
		if ok {
			*p = c.f
		}
	case *complex64:
		ok = t == TypeComplex8
		if ok {
			*p = complex64(c.c)
		}
	case *complex128:
		ok = t == TypeComplex16
		if ok {
			*p = c.c
		}
	default:
		ok = false
	}
	if !ok {
		return &errors.ValidationError{
			Field:   "dest",
			Value:   fmt.Sprintf("%T", dest),
			Message: fmt.Sprintf("%T cannot hold a %v value", dest, t),
		}
	}
	return nil
}

func isNilPointer(dest any) bool {
	switch p := dest.(type) {
	case nil:
		return true
	case *string:
		return p == nil
	case *[]byte:
		return p == nil
	case *int16:
		return p == nil
	case *uint16:
		return p == nil
	case *int32:
		return p == nil
	case *uint32:
		return p == nil
	case *int64:
		return p == nil
	case *uint64:
		return p == nil
	case *float32:
		return p == nil
	case *float64:
		return p == nil
	case *complex64:
		return p == nil
	case *complex128:
		return p == nil
	}
	return false
}

// isSpace matches the C locale's isspace().
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\v' || b == '\f' || b == '\r'
}

func trimSpace(s string) string {
	for len(s) > 0 && isSpace(s[0]) {
		s = s[1:]
	}
	for len(s) > 0 && isSpace(s[len(s)-1]) {
		s = s[:len(s)-1]
	}
	return s
}

// parseMagnitude parses an optionally signed integer with strtoll-style
// base detection. Text strtoll would only partly consume, such as "08" or
// "0x", is rejected like any other trailing garbage.
func parseMagnitude(s string) (neg bool, mag uint64, err error) {
	switch {
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	base := 10
	switch {
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		base, s = 16, s[2:]
	case len(s) > 1 && s[0] == '0':
		base, s = 8, s[1:]
	}
	mag, err = strconv.ParseUint(s, base, 64)
	return neg, mag, err
}

func parseInt(text string) (int64, error) {
	s := trimSpace(text)
	if s == "" {
		return 0, nil
	}
	neg, mag, err := parseMagnitude(s)
	if err != nil {
		return 0, err
	}
	if neg {
		if mag > 1<<63 {
			return 0, strconv.ErrRange
		}
		return -int64(mag), nil
	}
	if mag > math.MaxInt64 {
		return 0, strconv.ErrRange
	}
	return int64(mag), nil
}

func parseUint(text string) (uint64, error) {
	s := trimSpace(text)
	if s == "" {
		return 0, nil
	}
	neg, mag, err := parseMagnitude(s)
	if err != nil {
		return 0, err
	}
	if neg && mag != 0 {
		return 0, strconv.ErrRange
	}
	return mag, nil
}

func parseReal(text string, bitSize int) (float64, error) {
	s := trimSpace(text)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, bitSize)
}

// parseComplex implements the "<re>+i<im>" grammar with its fixed two-byte
// skip after the real part.
func parseComplex(text string, bitSize int) (complex128, error) {
	s := trimSpace(text)
	if s == "" {
		return 0, nil
	}
	n := scanReal(s)
	if n == 0 {
		return 0, strconv.ErrSyntax
	}
	re, err := strconv.ParseFloat(s[:n], bitSize)
	if err != nil {
		return 0, err
	}
	rest := s[n:]
	if len(rest) <= 2 {
		return 0, fmt.Errorf("missing imaginary part: %w", strconv.ErrSyntax)
	}
	im, err := strconv.ParseFloat(rest[2:], bitSize)
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// scanReal returns the length of the longest prefix of s that strtod would
// consume as a decimal number, infinity or NaN.
func scanReal(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	for _, word := range []string{"infinity", "inf", "nan"} {
		if len(s)-i >= len(word) && strings.EqualFold(s[i:i+len(word)], word) {
			return i + len(word)
		}
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
