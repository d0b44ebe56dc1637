// Package leaderboard maintains the capacity-bounded, score-ranked board:
// input sanitizing, the sheet-backed repository, eviction of surplus
// entries and the single-writer service exposed to the transports.
package leaderboard

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/lookboard/internal/common"
)

// forbiddenLeading are characters a spreadsheet treats as the start of a
// formula.
const forbiddenLeading = "=+-@"

// Normalize trims whitespace and strips a trailing ".0" that numeric-looking
// input picks up when it passes through a float.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	return strings.TrimSuffix(s, ".0")
}

// Validate accepts only non-empty strings made of Unicode letters and digits.
// Spaces and punctuation are rejected.
func Validate(raw string) error {
	s := Normalize(raw)
	if s == "" {
		return fmt.Errorf("empty value: %w", common.ErrValidation)
	}
	if strings.ContainsRune(forbiddenLeading, []rune(s)[0]) {
		return fmt.Errorf("value starts with %q: %w", []rune(s)[0], common.ErrValidation)
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("character %q not allowed: %w", r, common.ErrValidation)
		}
	}
	return nil
}
