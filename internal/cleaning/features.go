package cleaning

import (
	"fmt"
	"sort"
	"strings"

	"vcpulse/pkg/contracts/domain"
)

// Derivation computes one derived column as a pure function of
// already-cleaned cells. Sources are validated against the declared
// schema when the pipeline is constructed, never per-row.
type Derivation struct {
	Target  string
	Sources []string
	Kind    domain.Kind
	Derive  func(in []Value) Value
}

// CategoryPolicy selects the primary tag from a multi-tag category
// field. The original data never documents a tie-break rule, so the
// policy is swappable configuration rather than a hardcoded choice.
type CategoryPolicy interface {
	Pick(tags []string) string
	Name() string
}

type firstTagPolicy struct{}

func (firstTagPolicy) Pick(tags []string) string { return tags[0] }
func (firstTagPolicy) Name() string              { return "first" }

type alphabeticalPolicy struct{}

func (alphabeticalPolicy) Pick(tags []string) string {
	sorted := make([]string, len(tags))
	copy(sorted, tags)
	sort.Strings(sorted)
	return sorted[0]
}
func (alphabeticalPolicy) Name() string { return "alphabetical" }

// ParseCategoryPolicy resolves a configuration token to a policy.
func ParseCategoryPolicy(name string) (CategoryPolicy, error) {
	switch name {
	case "", "first":
		return firstTagPolicy{}, nil
	case "alphabetical":
		return alphabeticalPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown category policy %q", name)
	}
}

// PrimaryCategory derives a single scalar category from a pipe- or
// comma-delimited tag list. A missing input derives a missing output;
// it never crashes and never invents a tag.
func PrimaryCategory(policy CategoryPolicy) func(in []Value) Value {
	return func(in []Value) Value {
		src := in[0]
		if src.Missing {
			return MissingValue(domain.KindString)
		}
		tags := splitTags(src.Str)
		if len(tags) == 0 {
			return MissingValue(domain.KindString)
		}
		return StringValue(policy.Pick(tags))
	}
}

// YearOf extracts the integer year from a parsed date cell. A missing
// date derives the missing sentinel, never zero: a zero year would
// corrupt trend aggregations downstream.
func YearOf(in []Value) Value {
	src := in[0]
	if src.Missing {
		return MissingValue(domain.KindInt)
	}
	return IntValue(int64(src.Date.Year()))
}

// InvestmentDerivations returns the derived columns of the shipped
// investments schema, in artifact order.
func InvestmentDerivations(policy CategoryPolicy) []Derivation {
	return []Derivation{
		{
			Target:  domain.ColPrimaryCategory,
			Sources: []string{domain.ColCategoryList},
			Kind:    domain.KindString,
			Derive:  PrimaryCategory(policy),
		},
		{
			Target:  domain.ColFoundedYear,
			Sources: []string{domain.ColFoundedAt},
			Kind:    domain.KindInt,
			Derive:  YearOf,
		},
		{
			Target:  domain.ColFirstFundingYear,
			Sources: []string{domain.ColFirstFundingAt},
			Kind:    domain.KindInt,
			Derive:  YearOf,
		},
	}
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ','
	})
	tags := fields[:0]
	for _, f := range fields {
		if t := strings.TrimSpace(f); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
