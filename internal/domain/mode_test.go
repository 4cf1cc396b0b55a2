package domain

import (
	"errors"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeStrict, false},
		{"strict", ModeStrict, false},
		{"missing-only", ModeMissingOnly, false},
		{"lenient", "", true},
		{"STRICT", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMode) {
					t.Fatalf("ParseMode(%q) error = %v, want ErrInvalidMode", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMode_Reports(t *testing.T) {
	tests := []struct {
		mode     Mode
		category Category
		want     bool
	}{
		{ModeStrict, CategoryMissing, true},
		{ModeStrict, CategoryUnexpected, true},
		{ModeStrict, CategoryInvalidJSON, true},
		{ModeMissingOnly, CategoryMissing, true},
		{ModeMissingOnly, CategoryUnexpected, false},
		{ModeMissingOnly, CategoryInvalidJSON, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+string(tt.category), func(t *testing.T) {
			if got := tt.mode.Reports(tt.category); got != tt.want {
				t.Errorf("Reports() = %v, want %v", got, tt.want)
			}
		})
	}
}
