package domain

// Schema is the Single Source of Truth (SSOT) for the cleaned dataset
// contract. The cleaning pipeline, the chart-data generator and the
// dashboard server all import this package instead of addressing
// columns by ad hoc string literals.
//
// A Schema declares, per canonical column: the value kind, the
// missing-value strategy and (for fill_default) the substitute value.
// The cleaning pipeline is a small interpreter over this table, so
// each column rule can be tested in isolation.
type Schema struct {
	// Columns lists the declared columns in their stable artifact
	// order. Date-kinded columns are pipeline intermediates: they feed
	// derived year columns and are not serialized themselves.
	Columns []ColumnRule

	// Aliases maps a canonical header (the output of header
	// normalization) to the declared column it feeds, e.g.
	// "country_code" -> "country". Keys and values are canonical names.
	Aliases map[string]string
}

// Kind is the declared value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
	KindDate
)

// String returns the configuration token for the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindDate:
		return "date"
	default:
		return "string"
	}
}

// Strategy is the missing-value strategy applied to a column after
// coercion. Row drops take priority: a row dropped for one column is
// dropped for all columns.
type Strategy int

const (
	// FillSentinel keeps the cell as the reserved missing marker,
	// serialized as the empty string.
	FillSentinel Strategy = iota
	// FillDefault substitutes the column's configured default.
	FillDefault
	// DropRow removes the whole row when this column is missing.
	DropRow
)

// String returns the configuration token for the strategy.
func (s Strategy) String() string {
	switch s {
	case FillDefault:
		return "fill_default"
	case DropRow:
		return "drop_row"
	default:
		return "fill_sentinel"
	}
}

// ColumnRule declares how one canonical column is typed and cleaned.
type ColumnRule struct {
	// Name is the canonical column name (lowercase, underscores).
	Name string `validate:"required"`

	// Kind is the coercion target for the column's cells.
	Kind Kind

	// Strategy handles cells that are blank in the raw input or that
	// failed coercion.
	Strategy Strategy

	// Default is the textual substitute used by FillDefault. It is
	// coerced with the same rules as raw input, so a misconfigured
	// default fails loudly at pipeline construction.
	Default string
}

// Canonical column names of the published investments artifact.
// MissingToken documents how the missing sentinel serializes; readers
// of the artifact must treat it as "known to be absent", never as a
// real value.
const (
	ColName             = "name"
	ColCategoryList     = "category_list"
	ColPrimaryCategory  = "primary_category"
	ColFundingTotalUSD  = "funding_total_usd"
	ColFundingRounds    = "funding_rounds"
	ColStatus           = "status"
	ColCountry          = "country"
	ColFoundedAt        = "founded_at"
	ColFirstFundingAt   = "first_funding_at"
	ColFoundedYear      = "founded_year"
	ColFirstFundingYear = "first_funding_year"

	MissingToken = ""
)

// InvestmentSchema returns the shipped schema for the VC investments
// dataset. The defaults argument overrides fill_default values per
// column; the exact defaults are deliberately configuration, not code
// (whether the original constants were domain-chosen is unconfirmed).
func InvestmentSchema(defaults map[string]string) Schema {
	def := func(col, fallback string) string {
		if v, ok := defaults[col]; ok {
			return v
		}
		return fallback
	}

	return Schema{
		Columns: []ColumnRule{
			{Name: ColName, Kind: KindString, Strategy: DropRow},
			{Name: ColCategoryList, Kind: KindString, Strategy: FillSentinel},
			{Name: ColFundingTotalUSD, Kind: KindFloat, Strategy: FillDefault, Default: def(ColFundingTotalUSD, "0")},
			{Name: ColFundingRounds, Kind: KindInt, Strategy: FillDefault, Default: def(ColFundingRounds, "0")},
			{Name: ColStatus, Kind: KindString, Strategy: FillDefault, Default: def(ColStatus, "unknown")},
			{Name: ColCountry, Kind: KindString, Strategy: FillDefault, Default: def(ColCountry, "unknown")},
			{Name: ColFoundedAt, Kind: KindDate, Strategy: FillSentinel},
			{Name: ColFirstFundingAt, Kind: KindDate, Strategy: FillSentinel},
		},
		Aliases: map[string]string{
			"company":          ColName,
			"company_name":     ColName,
			"market":           ColCategoryList,
			"category":         ColCategoryList,
			"funding_total":    ColFundingTotalUSD,
			"country_code":     ColCountry,
			"founded":          ColFoundedAt,
			"founded_date":     ColFoundedAt,
			"first_funding":    ColFirstFundingAt,
			"first_funding_at": ColFirstFundingAt,
		},
	}
}

// Rule returns the rule declared for the canonical column name.
func (s Schema) Rule(name string) (ColumnRule, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnRule{}, false
}

// Resolve maps a canonical header through the alias table to the
// declared column it feeds. Headers without an alias resolve to
// themselves.
func (s Schema) Resolve(canonical string) string {
	if target, ok := s.Aliases[canonical]; ok {
		return target
	}
	return canonical
}
