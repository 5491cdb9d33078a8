package cli

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLineSize bounds one REPL command.
const MaxLineSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// sanitizeLine rejects oversized or invalid UTF-8 input and strips control
// characters (ANSI escapes, NUL, BEL) so they never reach labels or logs.
func sanitizeLine(input string) (string, error) {
	if len(input) > MaxLineSize {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), MaxLineSize)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && r != '\t' {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}
