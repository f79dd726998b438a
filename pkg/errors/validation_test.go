package errors

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateLabel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"value", "10k", false},
		{"with spaces", "100nF 50V X7R", false},
		{"empty", "", false},
		{"unicode", "4.7µF", false},

		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDesignators(t *testing.T) {
	if err := ValidateDesignators([]string{"R1", "C10"}); err != nil {
		t.Errorf("valid designators: %v", err)
	}
	if err := ValidateDesignators(nil); err != nil {
		t.Errorf("nil list: %v", err)
	}
	if err := ValidateDesignators([]string{"R1", "  "}); !Is(err, ErrCodeInvalidInput) {
		t.Errorf("blank designator error = %v, want INVALID_INPUT", err)
	}
}

func TestValidateDirAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pnp.csv")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ValidateDir(dir); err != nil {
		t.Errorf("ValidateDir(dir) = %v", err)
	}
	if err := ValidateDir(file); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidateDir(file) = %v, want INVALID_PATH", err)
	}
	if err := ValidateDir(filepath.Join(dir, "nope")); !Is(err, ErrCodeFileNotFound) {
		t.Errorf("ValidateDir(missing) = %v, want FILE_NOT_FOUND", err)
	}
	if err := ValidateDir(""); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidateDir(empty) = %v, want INVALID_PATH", err)
	}

	if err := ValidateFile(file); err != nil {
		t.Errorf("ValidateFile(file) = %v", err)
	}
	if err := ValidateFile(dir); !Is(err, ErrCodeInvalidPath) {
		t.Errorf("ValidateFile(dir) = %v, want INVALID_PATH", err)
	}
	if err := ValidateFile(filepath.Join(dir, "nope.csv")); !Is(err, ErrCodeFileNotFound) {
		t.Errorf("ValidateFile(missing) = %v, want FILE_NOT_FOUND", err)
	}
}
