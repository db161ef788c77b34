package sanitizer

import (
	"regexp"
	"strings"
)

var (
	reControlChars = regexp.MustCompile(`[\x00-\x1f\x7f]+`)
	reMultiSpace   = regexp.MustCompile(`\s+`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func stripControlChars(s string) string {
	return reControlChars.ReplaceAllString(s, "")
}

func collapseWhitespace(s string) string {
	return reMultiSpace.ReplaceAllString(s, " ")
}

// SanitizeDisplayName canonicalizes a holder's display name: control
// characters stripped, runs of whitespace collapsed, surrounding space
// trimmed. Case is preserved since names are shown back to users.
func SanitizeDisplayName(input string) string {
	p := Pipeline{
		stripControlChars,
		collapseWhitespace,
		trim,
	}
	return p.Apply(input)
}

// SanitizeRef canonicalizes an institutional reference (student or member
// id): trimmed, uppercased, internal whitespace removed.
func SanitizeRef(input string) string {
	p := Pipeline{
		stripControlChars,
		func(s string) string { return reMultiSpace.ReplaceAllString(s, "") },
		strings.ToUpper,
	}
	return p.Apply(input)
}
