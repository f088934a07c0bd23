// Package http contains the dashboard API handlers. Handlers read the
// in-memory dataset snapshot and serve the chart aggregations; all
// cleaning happens offline in the pipeline binary.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "vcpulse/internal/errors"
	"vcpulse/internal/insights"
	"vcpulse/pkg/contracts/domain"
)

// DatasetReader is the slice of the store the handlers need.
type DatasetReader interface {
	Investments() ([]domain.Investment, error)
}

// InsightsHandler serves the chart aggregation endpoints.
type InsightsHandler struct {
	store  DatasetReader
	logger *slog.Logger

	topNDefault    int
	topNMax        int
	trendYearFloor int
}

// NewInsightsHandler creates the aggregation handler. topNDefault is
// used when a top-N endpoint is called without ?n=; topNMax caps what
// a caller may request.
func NewInsightsHandler(store DatasetReader, logger *slog.Logger, topNDefault, topNMax, trendYearFloor int) *InsightsHandler {
	return &InsightsHandler{
		store:          store,
		logger:         logger.With(slog.String("component", "insights_handler")),
		topNDefault:    topNDefault,
		topNMax:        topNMax,
		trendYearFloor: trendYearFloor,
	}
}

// Routes returns the insights routes.
func (h *InsightsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/companies/top", h.GetTopCompanies)
	r.Get("/countries/top", h.GetTopCountries)
	r.Get("/markets/top", h.GetTopMarkets)
	r.Get("/categories/distribution", h.GetCategoryDistribution)
	r.Get("/trends", h.GetTrends)
	r.Get("/status", h.GetStatusDistribution)
	r.Get("/rounds", h.GetRoundsCorrelation)
	r.Get("/correlations", h.GetCorrelations)

	return r
}

// GetOverview handles GET /api/overview.
func (h *InsightsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, insights.ComputeOverview(invs))
}

// GetTopCompanies handles GET /api/companies/top?n=.
func (h *InsightsHandler) GetTopCompanies(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, insights.TopFundedCompanies)
}

// GetTopCountries handles GET /api/countries/top?n=.
func (h *InsightsHandler) GetTopCountries(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, insights.FundingByCountry)
}

// GetTopMarkets handles GET /api/markets/top?n=.
func (h *InsightsHandler) GetTopMarkets(w http.ResponseWriter, r *http.Request) {
	h.ranked(w, r, insights.ActiveMarkets)
}

// GetTrends handles GET /api/trends?min_year=.
func (h *InsightsHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}

	minYear := h.trendYearFloor
	if raw := r.URL.Query().Get("min_year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			apierrors.WriteError(w, r, apierrors.ErrValidation("min_year",
				fmt.Sprintf("min_year must be a non-negative integer, got %q", raw)))
			return
		}
		minYear = parsed
	}

	render.JSON(w, r, insights.FundingTrend(invs, minYear))
}

// GetStatusDistribution handles GET /api/status.
func (h *InsightsHandler) GetStatusDistribution(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, insights.StatusDistribution(invs))
}

// GetCategoryDistribution handles GET /api/categories/distribution?n=.
func (h *InsightsHandler) GetCategoryDistribution(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}

	n, ok := h.limit(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, insights.CategoryFundingDistribution(invs, n))
}

// GetCorrelations handles GET /api/correlations.
func (h *InsightsHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, insights.NumericCorrelations(invs))
}

// GetRoundsCorrelation handles GET /api/rounds.
func (h *InsightsHandler) GetRoundsCorrelation(w http.ResponseWriter, r *http.Request) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}
	render.JSON(w, r, insights.RoundsVsFunding(invs))
}

// ranked serves one top-N endpoint with shared ?n= handling.
func (h *InsightsHandler) ranked(w http.ResponseWriter, r *http.Request, compute func([]domain.Investment, int) []insights.RankedEntry) {
	invs, err := h.snapshot(w, r)
	if err != nil {
		return
	}

	n, ok := h.limit(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, compute(invs, n))
}

// snapshot fetches the dataset, writing the error response itself when
// the store has nothing loaded yet.
func (h *InsightsHandler) snapshot(w http.ResponseWriter, r *http.Request) ([]domain.Investment, error) {
	invs, err := h.store.Investments()
	if err != nil {
		h.logger.WarnContext(r.Context(), "dataset unavailable",
			slog.String("error", err.Error()))
		apierrors.WriteError(w, r, apierrors.ErrDatasetNotLoaded)
		return nil, err
	}
	return invs, nil
}

// limit parses ?n=, applying the configured default and cap.
func (h *InsightsHandler) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("n")
	if raw == "" {
		return h.topNDefault, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		apierrors.WriteError(w, r, apierrors.ErrValidation("n",
			fmt.Sprintf("n must be a positive integer, got %q", raw)))
		return 0, false
	}
	if n > h.topNMax {
		n = h.topNMax
	}
	return n, true
}
