// Command cleaner runs the offline cleaning pipeline: it reads the raw
// investments export, normalizes and coerces it against the canonical
// schema, derives the chart features and atomically publishes the
// cleaned dataset artifact.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"vcpulse/internal/cleaning"
	"vcpulse/internal/config"
	"vcpulse/internal/exporter"
	"vcpulse/internal/infrastructure"
	"vcpulse/internal/loader"
	"vcpulse/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "raw investments file (.csv or .xlsx); defaults to the configured raw path")
	output := flag.String("output", "", "cleaned dataset artifact path; defaults to the configured dataset path")
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

	if *input == "" {
		*input = cfg.RawPath()
	}
	if *output == "" {
		*output = cfg.DatasetPath()
	}

	runID := infrastructure.GenerateTraceID()
	ctx := infrastructure.WithTraceID(context.Background(), runID)

	logger.InfoContext(ctx, "cleaning run starting",
		slog.String("input", *input),
		slog.String("output", *output))

	if err := run(ctx, cfg, logger, *input, *output); err != nil {
		logger.ErrorContext(ctx, "cleaning run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, input, output string) error {
	raw, err := loader.Read(input)
	if err != nil {
		return err
	}

	policy, err := cleaning.ParseCategoryPolicy(cfg.Cleaning.CategoryPolicy)
	if err != nil {
		return err
	}

	pipeline, err := cleaning.NewPipeline(
		domain.InvestmentSchema(cfg.Cleaning.Defaults),
		cleaning.InvestmentDerivations(policy),
		logger,
	)
	if err != nil {
		return err
	}

	table, stats, err := pipeline.Run(ctx, raw)
	if err != nil {
		return err
	}

	writer := exporter.NewDatasetWriter(logger)
	if err := writer.Write(output, table); err != nil {
		return err
	}

	logger.InfoContext(ctx, "cleaning run complete",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("dropped_rows", stats.DroppedRows),
		slog.Any("dropped_columns", stats.DroppedColumns),
		slog.Any("parse_failures", stats.ParseFailures),
		slog.Any("filled_defaults", stats.FilledDefaults),
		slog.String("artifact", output))
	return nil
}
