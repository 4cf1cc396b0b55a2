package domain

import (
	"errors"
	"fmt"
)

// Mode selects which finding categories the structural pass reports.
type Mode string

const (
	// ModeStrict reports every structural finding.
	ModeStrict Mode = "strict"
	// ModeMissingOnly drops unexpected-entry findings at every level.
	ModeMissingOnly Mode = "missing-only"
)

// ErrInvalidMode is returned when a mode string is not recognised.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode converts a string into a Mode. The empty string means strict.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeMissingOnly:
		return ModeMissingOnly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Reports returns whether findings of the category are kept in this mode.
func (m Mode) Reports(c Category) bool {
	if m == ModeMissingOnly && c == CategoryUnexpected {
		return false
	}
	return true
}
