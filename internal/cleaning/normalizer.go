package cleaning

import (
	"strings"
	"unicode"

	"vcpulse/internal/errors"
)

// CanonicalName normalizes a raw column header to its canonical form:
// lowercase, leading/trailing whitespace stripped, every run of
// whitespace or punctuation collapsed to a single underscore, and
// leading/trailing underscores trimmed. The same convention is applied
// everywhere a raw header enters the system, so "Funding ($)",
// "funding_($)" and " FUNDING " all canonicalize to "funding".
func CanonicalName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	return b.String()
}

// NormalizeHeader maps every raw header to its canonical name,
// preserving positions. Two distinct raw headers collapsing to the
// same canonical name is a structural error: downstream stages address
// columns by canonical name, so a silent drop would misattribute a
// whole column of data.
func NormalizeHeader(rawHeader []string) ([]string, error) {
	canonical := make([]string, len(rawHeader))
	seen := make(map[string]string, len(rawHeader))

	for i, raw := range rawHeader {
		name := CanonicalName(raw)
		if first, dup := seen[name]; dup {
			return nil, errors.NewSchemaCollisionError(name, first, raw)
		}
		seen[name] = raw
		canonical[i] = name
	}

	return canonical, nil
}
