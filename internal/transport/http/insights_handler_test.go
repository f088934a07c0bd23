package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcpulse/internal/errors"
	"vcpulse/internal/insights"
	"vcpulse/pkg/contracts/domain"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeStore serves a fixed snapshot, or the not-loaded error when
// empty is set.
type fakeStore struct {
	invs     []domain.Investment
	notReady bool
	loadedAt time.Time
}

func (f *fakeStore) Investments() ([]domain.Investment, error) {
	if f.notReady {
		return nil, errors.NewNotFoundError("cleaned dataset")
	}
	return f.invs, nil
}

func (f *fakeStore) LoadedAt() time.Time { return f.loadedAt }
func (f *fakeStore) RecordCount() int    { return len(f.invs) }

func fixtureStore() *fakeStore {
	return &fakeStore{
		loadedAt: time.Now(),
		invs: []domain.Investment{
			{Name: "Acme", PrimaryCategory: "Software", FundingTotalUSD: 5_000_000, FundingRounds: 3, Status: "operating", Country: "USA", FirstFundingYear: 2012},
			{Name: "Bolt", PrimaryCategory: "Software", FundingTotalUSD: 2_000_000, FundingRounds: 1, Status: "acquired", Country: "GBR", FirstFundingYear: 2014},
			{Name: "Crux", PrimaryCategory: "Finance", FundingTotalUSD: 9_000_000, FundingRounds: 5, Status: "operating", Country: "USA", FirstFundingYear: 2012},
		},
	}
}

func newHandler(store *fakeStore) *InsightsHandler {
	return NewInsightsHandler(store, nopLogger(), 10, 50, 1980)
}

func doGet(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGetOverview(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/overview")
	require.Equal(t, http.StatusOK, rec.Code)

	var overview insights.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, 3, overview.Records)
	assert.Equal(t, 3, overview.UniqueStartups)
	assert.InDelta(t, 16_000_000, overview.TotalFundingUSD, 0.01)
}

func TestGetTopCompanies(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/companies/top?n=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []insights.RankedEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Crux", entries[0].Label)
	assert.Equal(t, "Acme", entries[1].Label)
}

func TestTopNDefaultsAndCap(t *testing.T) {
	handler := NewInsightsHandler(fixtureStore(), nopLogger(), 2, 3, 1980).Routes()

	// No ?n= uses the configured default of 2.
	rec := doGet(t, handler, "/countries/top")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []insights.RankedEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)

	// Oversized n is clamped to the cap, not rejected.
	rec = doGet(t, handler, "/markets/top?n=9999")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTopNRejectsBadValues(t *testing.T) {
	handler := newHandler(fixtureStore()).Routes()

	for _, n := range []string{"abc", "0", "-3"} {
		rec := doGet(t, handler, "/companies/top?n="+n)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "n=%s", n)
	}
}

func TestGetTrends(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/trends")
	require.Equal(t, http.StatusOK, rec.Code)

	var trend []insights.YearFunding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	require.Len(t, trend, 2)
	assert.Equal(t, 2012, trend[0].Year)
	assert.InDelta(t, 14_000_000, trend[0].FundingUSD, 0.01)
}

func TestGetTrendsMinYearOverride(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/trends?min_year=2012")
	require.Equal(t, http.StatusOK, rec.Code)

	var trend []insights.YearFunding
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	require.Len(t, trend, 1)
	assert.Equal(t, 2014, trend[0].Year)
}

func TestGetTrendsRejectsBadMinYear(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/trends?min_year=soon")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatusDistribution(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var dist []insights.StatusCount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	require.Len(t, dist, 2)
	assert.Equal(t, "operating", dist[0].Status)
	assert.Equal(t, 2, dist[0].Count)
}

func TestGetRoundsCorrelation(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/rounds")
	require.Equal(t, http.StatusOK, rec.Code)

	var corr insights.RoundsCorrelation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &corr))
	assert.Equal(t, 3, corr.Samples)
	assert.Greater(t, corr.Pearson, 0.9)
}

func TestGetCategoryDistribution(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/categories/distribution?n=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var dist []insights.CategoryDistribution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dist))
	require.Len(t, dist, 1)
	assert.Equal(t, "Software", dist[0].Category)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, float64(2_000_000), dist[0].MinUSD)
	assert.Equal(t, float64(5_000_000), dist[0].MaxUSD)
}

func TestGetCategoryDistributionRejectsBadN(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/categories/distribution?n=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCorrelations(t *testing.T) {
	rec := doGet(t, newHandler(fixtureStore()).Routes(), "/correlations")
	require.Equal(t, http.StatusOK, rec.Code)

	var corr insights.CorrelationMatrix
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &corr))
	require.Len(t, corr.Columns, 3)
	require.Len(t, corr.Matrix, 3)
	assert.Equal(t, 1.0, corr.Matrix[0][0])
}

func TestDatasetNotLoadedReturns503(t *testing.T) {
	handler := newHandler(&fakeStore{notReady: true}).Routes()

	for _, path := range []string{"/overview", "/companies/top", "/categories/distribution", "/trends", "/status", "/rounds", "/correlations"} {
		rec := doGet(t, handler, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "path %s", path)
	}
}
