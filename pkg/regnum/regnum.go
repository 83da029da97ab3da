// Package regnum parses free-form commercial-register numbers into a
// canonical comparable form.
package regnum

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNoDigits reports input with no digit run at all. Callers treat it
// as "registration number unusable" and fall back to name-only
// matching; it never aborts a run.
var ErrNoDigits = errors.New("registration number contains no digits")

// registerPrefixes are stripped case-insensitively from the front of
// the input, with or without a following colon.
var registerPrefixes = []string{"HRB", "HRA", "GNR", "PR", "VR"}

// Number is a canonical registration number: the digit sequence plus an
// optional single-letter suffix. The zero value means "no number".
type Number struct {
	Digits string
	Suffix string
}

// Parse canonicalizes a free-form registration-number string: register
// prefixes, whitespace and punctuation are stripped, the maximal run
// starting at the first digit becomes the numeric part, and a letter
// directly after it becomes the suffix. Any further trailing content is
// ignored rather than rejected. Parse is total: every input yields
// either a Number or ErrNoDigits, and parsing a canonical display
// string reproduces the same Number.
func Parse(raw string) (Number, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))

	for _, prefix := range registerPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = cleaned[len(prefix):]
			break
		}
	}

	// Collapse "259 502", "259.502" and "259502" into one digit run.
	var b strings.Builder
	b.Grow(len(cleaned))
	for _, r := range cleaned {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	cleaned = b.String()

	start := strings.IndexFunc(cleaned, isASCIIDigit)
	if start < 0 {
		return Number{}, ErrNoDigits
	}

	end := start
	for end < len(cleaned) && isASCIIDigit(rune(cleaned[end])) {
		end++
	}

	n := Number{Digits: cleaned[start:end]}
	if end < len(cleaned) {
		if r := rune(cleaned[end]); r >= 'A' && r <= 'Z' {
			n.Suffix = string(r)
		}
	}

	return n, nil
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// String renders the canonical display form: digits followed by the
// suffix when present.
func (n Number) String() string { return n.Digits + n.Suffix }

// IsZero reports whether no number was parsed.
func (n Number) IsZero() bool { return n.Digits == "" }
