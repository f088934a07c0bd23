package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vcpulse/internal/errors"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already canonical",
			input:    "funding_total_usd",
			expected: "funding_total_usd",
		},
		{
			name:     "uppercase with spaces",
			input:    " Funding Total USD ",
			expected: "funding_total_usd",
		},
		{
			name:     "currency decoration",
			input:    "Funding ($)",
			expected: "funding",
		},
		{
			name:     "punctuation runs collapse",
			input:    "first -- funding..at",
			expected: "first_funding_at",
		},
		{
			name:     "single word",
			input:    "Company",
			expected: "company",
		},
		{
			name:     "digits preserved",
			input:    "Top 10 Markets",
			expected: "top_10_markets",
		},
		{
			name:     "leading and trailing punctuation trimmed",
			input:    "__status__",
			expected: "status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CanonicalName(tt.input))
		})
	}
}

func TestNormalizeHeader(t *testing.T) {
	header := []string{"Company", "Funding ($)", "Founded"}

	canonical, err := NormalizeHeader(header)
	require.NoError(t, err)
	assert.Equal(t, []string{"company", "funding", "founded"}, canonical)
}

func TestNormalizeHeaderNoDuplicates(t *testing.T) {
	// Injectivity: any header that survives the collision check maps
	// each raw name to a unique canonical name.
	header := []string{"name", "Name Of Market", "status", "country_code", "funding rounds"}

	canonical, err := NormalizeHeader(header)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, c := range canonical {
		assert.False(t, seen[c], "duplicate canonical name %q", c)
		seen[c] = true
	}
}

func TestNormalizeHeaderCollision(t *testing.T) {
	// "Funding ($)" and "funding" collide after normalization; the
	// normalizer must fail loudly rather than silently dropping one.
	_, err := NormalizeHeader([]string{"Funding ($)", "funding"})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Contains(t, err.Error(), `"funding"`)
}
