package cli

import (
	"strings"
	"testing"
)

func TestSanitizeLine_SizeLimit(t *testing.T) {
	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", MaxLineSize - 1, false},
		{"Exact Limit", MaxLineSize, false},
		{"Over Limit", MaxLineSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sanitizeLine(strings.Repeat("a", tt.inputSize))
			if tt.wantErr && err == nil {
				t.Errorf("sanitizeLine() expected error for size %d, got nil", tt.inputSize)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("sanitizeLine() unexpected error: %v", err)
			}
		})
	}
}

func TestSanitizeLine_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "label a1 Send reminder", "label a1 Send reminder"},
		{"Tab", "label\ta1", "label\ta1"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Carriage Return", "save\r", "save"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sanitizeLine(tt.input)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeLine_InvalidUTF8(t *testing.T) {
	if _, err := sanitizeLine("bad \xff byte"); err != ErrInvalidUTF8 {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}
