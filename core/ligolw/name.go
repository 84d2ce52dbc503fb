package ligolw

import "strings"

// StripName recovers the logical identifier from a colon-namespaced Name
// attribute ("seg1:seg2:...:segN").
//
// With an empty suffix the final segment is discarded and the segment
// before it is returned; a name without a colon is returned unchanged. With
// a suffix, the final segment must equal suffix and the segment before it is
// returned; otherwise ok is false and the element does not match any query.
// An empty name resolves to an empty result and never fails.
func StripName(name, suffix string) (string, bool) {
	if name == "" {
		return "", true
	}
	last := strings.LastIndexByte(name, ':')
	if suffix == "" {
		if last < 0 {
			return name, true
		}
		return previousSegment(name[:last]), true
	}
	if last < 0 || name[last+1:] != suffix {
		return "", false
	}
	return previousSegment(name[:last]), true
}

// previousSegment returns the last colon-delimited segment of s.
func previousSegment(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// columnName reduces a Column Name ("table:column") to its final segment,
// the identifier rows are addressed by.
func columnName(name string) string {
	return previousSegment(name)
}

// elementName strips suffix from an element's Name attribute, falling back
// to the raw attribute when the suffix is absent.
func elementName(name, suffix string) string {
	if stripped, ok := StripName(name, suffix); ok {
		return stripped
	}
	return name
}
