package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

func testSchema() domain.Schema {
	return domain.Schema{
		Columns: []domain.ColumnRule{
			{Name: "name", Kind: domain.KindString, Strategy: domain.DropRow},
			{Name: "funding", Kind: domain.KindFloat, Strategy: domain.FillDefault, Default: "0"},
			{Name: "category", Kind: domain.KindString, Strategy: domain.FillSentinel},
		},
	}
}

func TestApplyMissingPolicy(t *testing.T) {
	table := &Table{
		Columns: []string{"name", "funding", "category"},
		Rows: [][]Value{
			{StringValue("A"), FloatValue(100), StringValue("Software")},
			{StringValue("B"), MissingValue(domain.KindFloat), MissingValue(domain.KindString)},
			{MissingValue(domain.KindString), FloatValue(50), StringValue("Finance")},
		},
	}

	dropped, filled, err := applyMissingPolicy(table, testSchema())
	require.NoError(t, err)

	// Row with missing name is dropped for all columns, even though
	// its funding cell could have been filled.
	assert.Equal(t, 1, dropped)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, map[string]int{"funding": 1}, filled)

	// fill_default leaves no raw blank behind.
	assert.False(t, table.Rows[1][1].Missing)
	assert.Equal(t, float64(0), table.Rows[1][1].Float)

	// fill_sentinel keeps the explicit marker.
	assert.True(t, table.Rows[1][2].Missing)
}

func TestApplyMissingPolicyBadDefault(t *testing.T) {
	schema := domain.Schema{
		Columns: []domain.ColumnRule{
			{Name: "funding", Kind: domain.KindFloat, Strategy: domain.FillDefault, Default: "lots"},
		},
	}
	table := &Table{Columns: []string{"funding"}, Rows: [][]Value{{MissingValue(domain.KindFloat)}}}

	_, _, err := applyMissingPolicy(table, schema)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}
