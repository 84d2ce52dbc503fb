package xml

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// EscapeText escapes the XML entities that may not appear literally in
// character data. Double quotes are left alone so quoted LIGOLW stream
// cells survive unchanged.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes text for use in a double-quoted XML attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
