package cleaning

import (
	"strconv"
	"strings"
	"time"

	"vcpulse/pkg/contracts/domain"
)

// The raw source uses a fixed, locale-independent convention: comma as
// the thousands separator and period as the decimal point. Coercion
// relies on that convention and never consults the process locale.
//
// Coercion is idempotent: a value that is already in clean form parses
// to itself, so re-running the coercer over an already-cleaned table
// is a no-op.

// dateLayouts are tried in order. A bare four-digit year is accepted
// as a fallback because several raw exports carry only the year.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"2006-01",
	"2006",
}

// CoerceCell parses a raw cell into the declared kind. The second
// return value reports a parse failure: a non-blank cell that could
// not be parsed after stripping known decorations. Failures are not
// errors; the caller routes them into the missing-value channel and
// counts them.
func CoerceCell(raw string, kind domain.Kind) (Value, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MissingValue(kind), false
	}

	switch kind {
	case domain.KindFloat:
		f, err := strconv.ParseFloat(stripNumericDecoration(trimmed), 64)
		if err != nil {
			return MissingValue(kind), true
		}
		return FloatValue(f), false

	case domain.KindInt:
		cleaned := stripNumericDecoration(trimmed)
		if i, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return IntValue(i), false
		}
		// Integer columns sometimes arrive as "3.0"; accept exact
		// integral floats, reject anything fractional.
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil && f == float64(int64(f)) {
			return IntValue(int64(f)), false
		}
		return MissingValue(kind), true

	case domain.KindDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return DateValue(t), false
			}
		}
		return MissingValue(kind), true

	default:
		return StringValue(trimmed), false
	}
}

// stripNumericDecoration removes grouping separators and currency
// decoration from a numeric-looking string: commas, internal spaces,
// a currency sign, and a trailing unit word such as "USD". The decimal
// point and sign are preserved.
func stripNumericDecoration(s string) string {
	s = strings.TrimSuffix(strings.ToUpper(s), "USD")
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ',', ' ', '$', '\u00a0':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
