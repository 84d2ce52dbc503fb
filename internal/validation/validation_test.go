package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative", "H-H1_PSD-1000000000-32.xml.gz", false},
		{"absolute", "/data/triggers/H1-EXCESSPOWER.xml", false},
		{"empty", "", true},
		{"null byte", "test\x00.xml", true},
		{"newline", "test\n.xml", true},
		{"too long", strings.Repeat("a", MaxPathLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("error %v is not ErrInvalidInput", err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "existing.xml")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"new file", filepath.Join(dir, "out.sqlite"), false},
		{"existing file", file, false},
		{"missing directory", filepath.Join(dir, "missing", "out.sqlite"), true},
		{"parent is a file", filepath.Join(file, "out.sqlite"), true},
		{"trailing separator", dir + string(filepath.Separator), true},
		{"hyphen", filepath.Join(dir, "-rf"), true},
		{"dot dot", dir + string(filepath.Separator) + "..", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"process", false},
		{"sngl_inspiral", false},
		{"PSD", false},
		{"", true},
		{"process:table", true},
		{"two words", true},
		{"tab\there", true},
	}

	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
