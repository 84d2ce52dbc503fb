package ligolw

import (
	"testing"

	"github.com/FocuswithJustin/ligolw/core/xml"
)

// parseElem parses data and returns its root element.
func parseElem(t *testing.T, data string) *xml.Node {
	t.Helper()
	doc, err := xml.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc.Root()
}

func parseDoc(t *testing.T, data string) *xml.Document {
	t.Helper()
	doc, err := xml.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}
