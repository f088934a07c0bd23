package domain

// Investment is one row of the published cleaned dataset as consumed
// by the chart-data generator and the dashboard. Numeric fields are
// true numbers; year fields carry 0 only on the consumer side, after
// the documented missing sentinel (empty string) has been read from
// the artifact. Trend aggregations filter years with a floor, so a
// consumer-side 0 can never leak into a chart.
type Investment struct {
	Name             string  `json:"name"`
	CategoryList     string  `json:"category_list,omitempty"`
	PrimaryCategory  string  `json:"primary_category"`
	FundingTotalUSD  float64 `json:"funding_total_usd"`
	FundingRounds    int     `json:"funding_rounds"`
	Status           string  `json:"status"`
	Country          string  `json:"country"`
	FoundedYear      int     `json:"founded_year,omitempty"`
	FirstFundingYear int     `json:"first_funding_year,omitempty"`
}

// ArtifactColumns is the stable, documented column order of the
// cleaned dataset artifact: the schema's non-date columns in
// declaration order, followed by the derived columns in derivation
// order. Both producers and consumers rely on the header row rather
// than positions, but the order itself never changes between runs.
func ArtifactColumns() []string {
	return []string{
		ColName,
		ColCategoryList,
		ColFundingTotalUSD,
		ColFundingRounds,
		ColStatus,
		ColCountry,
		ColPrimaryCategory,
		ColFoundedYear,
		ColFirstFundingYear,
	}
}
