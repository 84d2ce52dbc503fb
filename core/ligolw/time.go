package ligolw

import (
	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// Time is a decoded Time element. Value is the element text as written;
// interpreting it according to Type ("GPS", "Unix", "ISO-8601") is left to
// the caller.
type Time struct {
	Name  string
	Type  string
	Value string
}

// DecodeTime decodes a Time element. The Type attribute is required.
func DecodeTime(elem *xml.Node) (Time, error) {
	if elem == nil {
		return Time{}, errors.NewNotFound("Time", "")
	}
	name := elem.Attr("Name")
	typ, ok := elem.LookupAttr("Type")
	if !ok {
		return Time{}, errors.NewMalformed("Time", name, "Type", "missing Type")
	}
	return Time{Name: name, Type: typ, Value: trimSpace(elem.Text())}, nil
}
