package ligolw

import "testing"

func TestStripName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		suffix string
		want   string
		ok     bool
	}{
		{"suffix match", "a:b:c:table", "table", "c", true},
		{"suffix mismatch", "a:b", "othersuffix", "", false},
		{"no colon no suffix", "x", "", "x", true},
		{"empty name", "", "table", "", true},
		{"empty name no suffix", "", "", "", true},
		{"typical table", "process:table", "table", "process", true},
		{"typical param", "f0:param", "param", "f0", true},
		{"no suffix drops last segment", "process:start_time", "", "process", true},
		{"no suffix deep", "a:b:c", "", "b", true},
		{"suffix required but no colon", "table", "table", "", false},
		{"suffix is a prefix of segment", "x:tables", "table", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripName(tt.in, tt.suffix)
			if got != tt.want || ok != tt.ok {
				t.Errorf("StripName(%q, %q) = %q, %v; want %q, %v", tt.in, tt.suffix, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestColumnName(t *testing.T) {
	tests := map[string]string{
		"process:program":    "program",
		"sim_burst:waveform": "waveform",
		"a:b:c":              "c",
		"plain":              "plain",
		"":                   "",
	}
	for in, want := range tests {
		if got := columnName(in); got != want {
			t.Errorf("columnName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestElementNameFallsBack(t *testing.T) {
	if got := elementName("psd:array", "array"); got != "psd" {
		t.Errorf("elementName stripped = %q", got)
	}
	if got := elementName("Frequency", "dim"); got != "Frequency" {
		t.Errorf("elementName fallback = %q", got)
	}
}
