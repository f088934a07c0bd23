// Command chartdata reads the published cleaned dataset and writes the
// dashboard chart aggregations as JSON files plus a summary CSV under
// the reports directory. It computes with the same insights package as
// the live dashboard, so offline reports and the web charts agree.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"vcpulse/internal/config"
	"vcpulse/internal/exporter"
	"vcpulse/internal/infrastructure"
	"vcpulse/internal/insights"
	"vcpulse/pkg/contracts/domain"
)

func main() {
	dataset := flag.String("dataset", "", "cleaned dataset artifact path; defaults to the configured dataset path")
	outDir := flag.String("out", "", "reports output directory; defaults to the configured reports path")
	topN := flag.Int("n", 0, "entries per top-N chart; defaults to the configured dashboard value")
	configFile := flag.String("config", "", "config file path (defaults to config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *dataset == "" {
		*dataset = cfg.DatasetPath()
	}
	if *outDir == "" {
		*outDir = cfg.ReportsPath()
	}
	if *topN <= 0 {
		*topN = cfg.Dashboard.TopNDefault
	}

	runID := infrastructure.GenerateTraceID()
	ctx := infrastructure.WithTraceID(context.Background(), runID)

	if err := run(ctx, cfg, logger, *dataset, *outDir, *topN); err != nil {
		logger.ErrorContext(ctx, "chart data generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, dataset, outDir string, topN int) error {
	store := insights.NewStore(dataset, logger)
	if err := store.Load(ctx); err != nil {
		return err
	}
	invs, err := store.Investments()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "generating chart data",
		slog.String("dataset", dataset),
		slog.String("out", outDir),
		slog.Int("records", len(invs)))

	charts := map[string]interface{}{
		"overview.json":              insights.ComputeOverview(invs),
		"top_companies.json":         insights.TopFundedCompanies(invs, topN),
		"top_countries.json":         insights.FundingByCountry(invs, topN),
		"top_markets.json":           insights.ActiveMarkets(invs, topN),
		"funding_trends.json":        insights.FundingTrend(invs, cfg.Cleaning.TrendYearFloor),
		"status.json":                insights.StatusDistribution(invs),
		"rounds.json":                insights.RoundsVsFunding(invs),
		"category_distribution.json": insights.CategoryFundingDistribution(invs, topN),
		"correlations.json":          insights.NumericCorrelations(invs),
	}

	runID := infrastructure.GetTraceID(ctx)
	for name, payload := range charts {
		path := filepath.Join(outDir, name)
		if err := writeJSON(path, payload, runID); err != nil {
			return err
		}
		logger.InfoContext(ctx, "chart written", slog.String("path", path))
	}

	summaryPath := filepath.Join(outDir, "summary.csv")
	if err := writeSummary(summaryPath, invs); err != nil {
		return err
	}
	logger.InfoContext(ctx, "summary written", slog.String("path", summaryPath))

	return nil
}

// chartFile is the envelope around each chart payload; generated_at and
// run_id let consumers tell report generations apart.
type chartFile struct {
	GeneratedAt time.Time   `json:"generated_at"`
	RunID       string      `json:"run_id"`
	Data        interface{} `json:"data"`
}

func writeJSON(path string, payload interface{}, runID string) error {
	return exporter.WriteAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(chartFile{
			GeneratedAt: time.Now().UTC(),
			RunID:       runID,
			Data:        payload,
		})
	})
}

// writeSummary exports one row per investment with the columns the
// analyst-facing spreadsheet template expects.
func writeSummary(path string, invs []domain.Investment) error {
	return exporter.WriteAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"name", "primary_category", "country", "status", "funding_total_usd", "funding_rounds", "first_funding_year"}); err != nil {
			return err
		}
		for _, inv := range invs {
			record := []string{
				inv.Name,
				inv.PrimaryCategory,
				inv.Country,
				inv.Status,
				strconv.FormatFloat(inv.FundingTotalUSD, 'f', -1, 64),
				strconv.Itoa(inv.FundingRounds),
				strconv.Itoa(inv.FirstFundingYear),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
