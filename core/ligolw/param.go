package ligolw

import (
	"fmt"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// DecodeParam decodes a Param element's text as a single cell of its
// declared Type, lstring when the attribute is absent.
func DecodeParam(elem *xml.Node) (Cell, error) {
	if elem == nil {
		return Cell{}, errors.NewNotFound("Param", "")
	}
	name := elementName(elem.Attr("Name"), "param")

	typ := TypeLString
	if typeName, ok := elem.LookupAttr("Type"); ok {
		if typ = ParseCellType(typeName); typ == TypeUnknown {
			return Cell{}, errors.NewMalformed("Param", name, "Type", fmt.Sprintf("unknown type %q", typeName))
		}
	}

	c, err := DecodeCell(typ, elem.Text())
	if err != nil {
		return Cell{}, &errors.MalformedError{Element: "Param", Name: name, Message: "bad value", Err: err}
	}
	return c, nil
}

// ParamAs decodes a Param element whose type must be t and stores the value
// in dest. A nil elem reports not found, which lets callers chain it
// directly after GetParam.
func ParamAs(elem *xml.Node, t CellType, dest any) error {
	c, err := DecodeParam(elem)
	if err != nil {
		return err
	}
	if c.Type() != t {
		return &errors.ValidationError{
			Field:   elementName(elem.Attr("Name"), "param"),
			Value:   c.Type().String(),
			Message: fmt.Sprintf("Param has type %v, want %v", c.Type(), t),
		}
	}
	return WriteNative(c, t, dest)
}
