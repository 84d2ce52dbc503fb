// Package ligolw decodes and encodes the LIGO Light-Weight XML conventions:
// typed, delimiter-separated payloads carried in Table, Array, Param and
// Time elements.
//
// Elements are located in a parsed document with GetTable, GetArray,
// GetParam and GetTime, then decoded:
//
//	doc, _ := xml.Parse(data)
//	elem := ligolw.GetTable(doc.Root(), "process")
//	table, err := ligolw.DecodeTable(elem, nil)
//
// DecodeTable hands every row to a RowFunc, which takes ownership of it;
// the default, AppendRow, collects the rows in the Table. TableRows offers
// the same decode as a range-over-func sequence. Unpack copies named,
// typed columns of a row into Go variables.
//
// The cell type system is closed: sixteen scalar types, of which only the
// numeric ones may appear in an Array.
package ligolw
