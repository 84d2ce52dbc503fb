package ligolw

import (
	"iter"

	"github.com/FocuswithJustin/ligolw/core/xml"
)

// GetTable returns the first Table child of parent whose Name resolves to
// name with the "table" suffix, or nil.
func GetTable(parent *xml.Node, name string) *xml.Node {
	return childNamed(parent, "Table", "table", name, false)
}

// GetArray returns the first Array child of parent whose Name resolves to
// name with the "array" suffix. An empty name matches the first Array.
func GetArray(parent *xml.Node, name string) *xml.Node {
	return childNamed(parent, "Array", "array", name, true)
}

// GetParam returns the first Param child of parent whose Name resolves to
// name with the "param" suffix. An empty name matches the first Param.
func GetParam(parent *xml.Node, name string) *xml.Node {
	return childNamed(parent, "Param", "param", name, true)
}

// GetTime returns the first Time child of parent whose Name attribute
// equals name. Time names carry no suffix.
func GetTime(parent *xml.Node, name string) *xml.Node {
	for _, elem := range parent.ChildrenNamed("Time") {
		if elem.Attr("Name") == name {
			return elem
		}
	}
	return nil
}

func childNamed(parent *xml.Node, tag, suffix, name string, emptyMatchesAny bool) *xml.Node {
	for _, elem := range parent.ChildrenNamed(tag) {
		if name == "" && emptyMatchesAny {
			return elem
		}
		if got, ok := StripName(elem.Attr("Name"), suffix); ok && got == name {
			return elem
		}
	}
	return nil
}

// FindTables returns every Table element in doc, at any depth, in document
// order.
func FindTables(doc *xml.Document) ([]*xml.Node, error) {
	return doc.XPath("//Table")
}

// FindTable returns the first Table anywhere in doc whose Name resolves to
// name, or nil.
func FindTable(doc *xml.Document, name string) (*xml.Node, error) {
	tables, err := FindTables(doc)
	if err != nil {
		return nil, err
	}
	for _, elem := range tables {
		if got, ok := StripName(elem.Attr("Name"), "table"); ok && got == name {
			return elem, nil
		}
	}
	return nil, nil
}

// Containers yields the LIGO_LW elements at or below root whose Name
// attribute equals name. The search finds the first match in document
// order, then continues with that element's following LIGO_LW siblings, so
// only containers at the depth of the first match are reported.
func Containers(root *xml.Node, name string) iter.Seq[*xml.Node] {
	return func(yield func(*xml.Node) bool) {
		candidates, err := root.XPath("descendant-or-self::LIGO_LW[@Name]")
		if err != nil {
			return
		}
		var first *xml.Node
		for _, elem := range candidates {
			if elem.Attr("Name") == name {
				first = elem
				break
			}
		}
		for elem := first; elem != nil; elem = elem.NextSibling() {
			if elem.Attr("Name") != name {
				continue
			}
			if !yield(elem) {
				return
			}
		}
	}
}
