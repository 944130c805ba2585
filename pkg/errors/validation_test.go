package errors

import (
	"strings"
	"testing"
)

func TestValidateProjectID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "tower-a", false},
		{"valid with underscore", "site_12", false},
		{"valid with dot", "phase.2", false},
		{"valid uuid", "4f6c2b3e-9a0d-4c1e-8f57-2d1c0b9e7a11", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"path traversal", "..", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateProjectID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateTaskID(t *testing.T) {
	if err := ValidateTaskID("pour-slab"); err != nil {
		t.Errorf("valid task id rejected: %v", err)
	}
	if err := ValidateTaskID(""); err == nil {
		t.Error("empty task id should be rejected")
	}
	if err := ValidateTaskID("../etc"); err == nil {
		t.Error("traversal task id should be rejected")
	}
}

func TestValidateDateString(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"", false},
		{"2025-01-01", false},
		{"2025-1-1", true},
		{"01/02/2025", true},
		{"2025-01-01T00:00:00Z", true},
	}

	for _, tt := range tests {
		err := ValidateDateString("start_date", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateDateString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidDate) {
			t.Errorf("ValidateDateString(%q) code = %v", tt.input, GetCode(err))
		}
	}
}
