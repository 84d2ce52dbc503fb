// Package validation checks user-supplied paths and names before the CLI
// touches the filesystem.
package validation

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/FocuswithJustin/ligolw/core/errors"
)

// MaxPathLength is the maximum accepted path length.
const MaxPathLength = 4096

// ValidatePath rejects empty and overlong paths and paths containing null
// bytes or control characters.
func ValidatePath(path string) error {
	if path == "" {
		return errors.NewValidation("path", "path cannot be empty")
	}
	if len(path) > MaxPathLength {
		return errors.NewValidation("path", "path too long")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return &errors.ValidationError{Field: "path", Value: path, Message: "control character not allowed"}
		}
	}
	return nil
}

// ValidateOutputPath checks a path the CLI is about to create: it must pass
// ValidatePath, name a file rather than a directory, not start with a
// hyphen, and live in an existing directory.
func ValidateOutputPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	base := filepath.Base(path)
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.HasSuffix(path, string(filepath.Separator)) {
		return &errors.ValidationError{Field: "path", Value: path, Message: "not a file name"}
	}
	if strings.HasPrefix(base, "-") {
		return &errors.ValidationError{Field: "path", Value: path, Message: "file name cannot start with hyphen"}
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return &errors.ValidationError{Field: "path", Value: path, Message: "output directory does not exist", Err: err}
	}
	if !info.IsDir() {
		return &errors.ValidationError{Field: "path", Value: path, Message: "output directory is not a directory"}
	}
	return nil
}

// ValidateName checks a LIGOLW element name given on the command line.
// Names are matched after the ":table"-style suffix is stripped, so the
// suffix itself is rejected.
func ValidateName(name string) error {
	if name == "" {
		return errors.NewValidation("name", "name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return &errors.ValidationError{Field: "name", Value: name, Message: "whitespace or control character not allowed"}
		}
	}
	if strings.Contains(name, ":") {
		return &errors.ValidationError{Field: "name", Value: name, Message: `give the bare name, e.g. "process" rather than "process:table"`}
	}
	return nil
}
