package errors

import (
	"os"
	"strings"
	"unicode"
)

// maxLabelLength bounds designators and value labels accepted from the HTTP viewer.
const maxLabelLength = 256

// ValidateLabel validates a component value label or designator received from
// an untrusted surface. Empty labels are allowed because components with a
// blank comment still form a group.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateDesignators validates a list of designators and rejects empty entries.
func ValidateDesignators(designators []string) error {
	for _, d := range designators {
		if strings.TrimSpace(d) == "" {
			return New(ErrCodeInvalidInput, "designator cannot be empty")
		}
		if err := ValidateLabel(d); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDir checks that path names an existing directory.
func ValidateDir(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "folder path cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeFileNotFound, "folder does not exist: %s", path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "stat %s", path)
	}
	if !info.IsDir() {
		return New(ErrCodeInvalidPath, "not a folder: %s", path)
	}
	return nil
}

// ValidateFile checks that path names an existing regular file.
func ValidateFile(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "file path cannot be empty")
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return New(ErrCodeFileNotFound, "file does not exist: %s", path)
	}
	if err != nil {
		return Wrap(ErrCodeInvalidPath, err, "stat %s", path)
	}
	if info.IsDir() {
		return New(ErrCodeInvalidPath, "expected a file, got a folder: %s", path)
	}
	return nil
}
