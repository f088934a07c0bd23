// Package insights computes the dashboard aggregations over the
// published cleaned dataset. Every function here is pure over a slice
// of investments; the chart-data generator and the HTTP handlers share
// these implementations so both collaborators chart identical numbers.
package insights

import (
	"math"
	"sort"

	"vcpulse/pkg/contracts/domain"
)

// Overview summarizes the whole dataset.
type Overview struct {
	TotalFundingUSD   float64 `json:"total_funding_usd"`
	UniqueStartups    int     `json:"unique_startups"`
	AverageFundingUSD float64 `json:"average_funding_usd"`
	Records           int     `json:"records"`
}

// RankedEntry is one bar of a top-N chart.
type RankedEntry struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// YearFunding is one point of the funding trend line.
type YearFunding struct {
	Year       int     `json:"year"`
	FundingUSD float64 `json:"funding_usd"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// RoundsCorrelation reports the relationship between funding rounds
// and total funding over rows where both are positive.
type RoundsCorrelation struct {
	Pearson float64 `json:"pearson"`
	Samples int     `json:"samples"`
}

// CategoryDistribution describes the funding spread within one primary
// category as five-number summary statistics, one box of the
// per-category distribution chart.
type CategoryDistribution struct {
	Category  string  `json:"category"`
	Count     int     `json:"count"`
	MinUSD    float64 `json:"min_usd"`
	Q1USD     float64 `json:"q1_usd"`
	MedianUSD float64 `json:"median_usd"`
	Q3USD     float64 `json:"q3_usd"`
	MaxUSD    float64 `json:"max_usd"`
}

// CorrelationMatrix is the pairwise Pearson correlation of the numeric
// columns charted together. Matrix[i][j] correlates Columns[i] with
// Columns[j]; the matrix is symmetric with a unit diagonal.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Matrix  [][]float64 `json:"matrix"`
}

// ComputeOverview returns dataset-wide funding totals.
func ComputeOverview(invs []domain.Investment) Overview {
	o := Overview{Records: len(invs)}
	names := make(map[string]struct{}, len(invs))
	for _, inv := range invs {
		o.TotalFundingUSD += inv.FundingTotalUSD
		names[inv.Name] = struct{}{}
	}
	o.UniqueStartups = len(names)
	if len(invs) > 0 {
		o.AverageFundingUSD = o.TotalFundingUSD / float64(len(invs))
	}
	return o
}

// TopFundedCompanies sums funding per company name and returns the n
// largest, descending.
func TopFundedCompanies(invs []domain.Investment, n int) []RankedEntry {
	byName := make(map[string]float64)
	for _, inv := range invs {
		byName[inv.Name] += inv.FundingTotalUSD
	}
	return topN(byName, n)
}

// FundingByCountry sums funding per country and returns the n largest.
func FundingByCountry(invs []domain.Investment, n int) []RankedEntry {
	byCountry := make(map[string]float64)
	for _, inv := range invs {
		byCountry[inv.Country] += inv.FundingTotalUSD
	}
	return topN(byCountry, n)
}

// ActiveMarkets counts unique startups per primary category and
// returns the n most active. Rows whose category is the missing
// sentinel are excluded rather than charted as an empty label.
func ActiveMarkets(invs []domain.Investment, n int) []RankedEntry {
	startups := make(map[string]map[string]struct{})
	for _, inv := range invs {
		if inv.PrimaryCategory == domain.MissingToken {
			continue
		}
		if startups[inv.PrimaryCategory] == nil {
			startups[inv.PrimaryCategory] = make(map[string]struct{})
		}
		startups[inv.PrimaryCategory][inv.Name] = struct{}{}
	}

	counts := make(map[string]float64, len(startups))
	for cat, names := range startups {
		counts[cat] = float64(len(names))
	}
	return topN(counts, n)
}

// FundingTrend sums funding per first-funding year, ascending by year.
// Years at or below the floor are excluded; the floor also fences off
// the consumer-side zero that stands in for the missing sentinel.
func FundingTrend(invs []domain.Investment, minYear int) []YearFunding {
	byYear := make(map[int]float64)
	for _, inv := range invs {
		if inv.FirstFundingYear <= minYear {
			continue
		}
		byYear[inv.FirstFundingYear] += inv.FundingTotalUSD
	}

	trend := make([]YearFunding, 0, len(byYear))
	for year, funding := range byYear {
		trend = append(trend, YearFunding{Year: year, FundingUSD: funding})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Year < trend[j].Year })
	return trend
}

// StatusDistribution counts rows per status, descending by count.
func StatusDistribution(invs []domain.Investment) []StatusCount {
	byStatus := make(map[string]int)
	for _, inv := range invs {
		byStatus[inv.Status]++
	}

	dist := make([]StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		dist = append(dist, StatusCount{Status: status, Count: count})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Status < dist[j].Status
	})
	return dist
}

// RoundsVsFunding computes the Pearson correlation between funding
// rounds and total funding over rows with both values positive.
func RoundsVsFunding(invs []domain.Investment) RoundsCorrelation {
	var xs, ys []float64
	for _, inv := range invs {
		if inv.FundingRounds > 0 && inv.FundingTotalUSD > 0 {
			xs = append(xs, float64(inv.FundingRounds))
			ys = append(ys, inv.FundingTotalUSD)
		}
	}

	return RoundsCorrelation{
		Pearson: pearson(xs, ys),
		Samples: len(xs),
	}
}

// CategoryFundingDistribution summarizes the funding spread per primary
// category for the n categories with the most rows. Categories are
// ranked by row count (not unique startups, unlike ActiveMarkets) and
// rows with the sentinel category are excluded.
func CategoryFundingDistribution(invs []domain.Investment, n int) []CategoryDistribution {
	byCategory := make(map[string][]float64)
	for _, inv := range invs {
		if inv.PrimaryCategory == domain.MissingToken {
			continue
		}
		byCategory[inv.PrimaryCategory] = append(byCategory[inv.PrimaryCategory], inv.FundingTotalUSD)
	}

	counts := make(map[string]float64, len(byCategory))
	for cat, values := range byCategory {
		counts[cat] = float64(len(values))
	}

	dist := make([]CategoryDistribution, 0, n)
	for _, entry := range topN(counts, n) {
		values := byCategory[entry.Label]
		sort.Float64s(values)
		dist = append(dist, CategoryDistribution{
			Category:  entry.Label,
			Count:     len(values),
			MinUSD:    values[0],
			Q1USD:     quantile(values, 0.25),
			MedianUSD: quantile(values, 0.5),
			Q3USD:     quantile(values, 0.75),
			MaxUSD:    values[len(values)-1],
		})
	}
	return dist
}

// NumericCorrelations computes the pairwise Pearson matrix over the
// three numeric columns charted together: funding total, funding
// rounds and first funding year. Each pair correlates over the rows
// where both values are positive, fencing off the consumer-side zeros
// that stand in for the missing sentinel.
func NumericCorrelations(invs []domain.Investment) CorrelationMatrix {
	columns := []string{
		domain.ColFundingTotalUSD,
		domain.ColFundingRounds,
		domain.ColFirstFundingYear,
	}
	extract := []func(domain.Investment) float64{
		func(inv domain.Investment) float64 { return inv.FundingTotalUSD },
		func(inv domain.Investment) float64 { return float64(inv.FundingRounds) },
		func(inv domain.Investment) float64 { return float64(inv.FirstFundingYear) },
	}

	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
		matrix[i][i] = 1
	}
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			var xs, ys []float64
			for _, inv := range invs {
				x, y := extract[i](inv), extract[j](inv)
				if x > 0 && y > 0 {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			r := pearson(xs, ys)
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return CorrelationMatrix{Columns: columns, Matrix: matrix}
}

// quantile interpolates linearly between the two nearest order
// statistics, matching the convention of the charting stack the
// summary stats feed.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

func topN(values map[string]float64, n int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(values))
	for label, value := range values {
		entries = append(entries, RankedEntry{Label: label, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Label < entries[j].Label
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
