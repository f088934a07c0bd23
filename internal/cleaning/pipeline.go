package cleaning

import (
	"context"
	"log/slog"

	"vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

// Pipeline runs the whole-table cleaning pass: normalize headers,
// project onto the declared schema, coerce values, resolve missing
// cells, derive features. Construction validates structure (derivation
// sources against the schema); Run validates nothing per-row beyond
// cell parsing, which is recovered locally.
type Pipeline struct {
	schema      domain.Schema
	derivations []Derivation
	logger      *slog.Logger
}

// Stats summarizes one pipeline run for logging and observability.
type Stats struct {
	RowsIn         int            `json:"rows_in"`
	RowsOut        int            `json:"rows_out"`
	DroppedRows    int            `json:"dropped_rows"`
	DroppedColumns []string       `json:"dropped_columns,omitempty"`
	ParseFailures  map[string]int `json:"parse_failures,omitempty"`
	FilledDefaults map[string]int `json:"filled_defaults,omitempty"`
}

// NewPipeline builds a pipeline over the declared schema. Every
// derivation source must name a declared column; an unknown source is
// a construction-time error, so a misconfigured derivation can never
// reach row processing.
func NewPipeline(schema domain.Schema, derivations []Derivation, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, d := range derivations {
		for _, src := range d.Sources {
			if _, ok := schema.Rule(src); !ok {
				return nil, errors.NewDerivationSourceError(d.Target, src)
			}
		}
	}

	return &Pipeline{
		schema:      schema,
		derivations: derivations,
		logger:      logger.With(slog.String("component", "cleaning_pipeline")),
	}, nil
}

// Run executes the full cleaning pass over a raw table and returns the
// cleaned table in artifact column order together with run statistics.
// Structural failures abort the run; per-cell parse failures are
// counted and absorbed as missing values.
func (p *Pipeline) Run(ctx context.Context, raw domain.RawTable) (*Table, *Stats, error) {
	canonical, err := NormalizeHeader(raw.Header)
	if err != nil {
		return nil, nil, err
	}

	table, droppedCols, err := p.project(raw, canonical)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		RowsIn:         len(raw.Rows),
		DroppedColumns: droppedCols,
		ParseFailures:  make(map[string]int),
		FilledDefaults: map[string]int{},
	}
	rowsProcessedTotal.Add(float64(len(raw.Rows)))

	p.coerce(ctx, table, stats)

	dropped, filled, err := applyMissingPolicy(table, p.schema)
	if err != nil {
		return nil, nil, err
	}
	stats.DroppedRows = dropped
	stats.FilledDefaults = filled
	droppedRowsTotal.Add(float64(dropped))

	p.derive(table)

	out := p.selectArtifactColumns(table)
	stats.RowsOut = len(out.Rows)

	p.logger.InfoContext(ctx, "cleaning pass complete",
		slog.Int("rows_in", stats.RowsIn),
		slog.Int("rows_out", stats.RowsOut),
		slog.Int("dropped_rows", stats.DroppedRows),
		slog.Any("parse_failures", stats.ParseFailures))

	return out, stats, nil
}

// project maps raw columns onto the declared schema through the alias
// table. A raw column that resolves to no declared column is dropped
// (and reported); a declared column absent from the input starts out
// all-missing. Two raw columns resolving to the same declared column
// is the same structural fault as a header collision.
func (p *Pipeline) project(raw domain.RawTable, canonical []string) (*Table, []string, error) {
	source := make(map[string]int, len(canonical))
	var droppedCols []string

	resolvedFrom := make(map[string]string, len(canonical))
	for i, name := range canonical {
		resolved := p.schema.Resolve(name)
		if _, ok := p.schema.Rule(resolved); !ok {
			droppedCols = append(droppedCols, name)
			continue
		}
		if first, dup := resolvedFrom[resolved]; dup {
			return nil, nil, errors.NewSchemaCollisionError(resolved, first, raw.Header[i])
		}
		resolvedFrom[resolved] = raw.Header[i]
		source[resolved] = i
	}

	if len(droppedCols) > 0 {
		p.logger.Debug("dropping raw columns outside the declared schema",
			slog.Any("columns", droppedCols))
	}

	columns := make([]string, len(p.schema.Columns))
	for i, rule := range p.schema.Columns {
		columns[i] = rule.Name
	}

	rows := make([][]Value, len(raw.Rows))
	for r := range raw.Rows {
		row := make([]Value, len(columns))
		for c, rule := range p.schema.Columns {
			idx, ok := source[rule.Name]
			if !ok {
				row[c] = MissingValue(rule.Kind)
				continue
			}
			row[c] = StringValue(raw.Cell(r, idx))
		}
		rows[r] = row
	}

	return &Table{Columns: columns, Rows: rows}, droppedCols, nil
}

// coerce parses every projected cell into its declared kind. Failures
// become missing cells and are counted per column.
func (p *Pipeline) coerce(ctx context.Context, table *Table, stats *Stats) {
	for c, rule := range p.schema.Columns {
		failures := 0
		for _, row := range table.Rows {
			v, failed := CoerceCell(row[c].Str, rule.Kind)
			if failed {
				failures++
			}
			row[c] = v
		}
		if failures > 0 {
			stats.ParseFailures[rule.Name] = failures
			parseFailuresTotal.WithLabelValues(rule.Name).Add(float64(failures))
			p.logger.DebugContext(ctx, "cells failed coercion",
				slog.String("column", rule.Name),
				slog.String("kind", rule.Kind.String()),
				slog.Int("count", failures))
		}
	}
}

// derive appends every derived column. Derivations are pure over the
// cleaned cells; a missing source derives a missing target.
func (p *Pipeline) derive(table *Table) {
	for _, d := range p.derivations {
		srcIdx := make([]int, len(d.Sources))
		for i, src := range d.Sources {
			srcIdx[i] = table.ColumnIndex(src)
		}
		table.Columns = append(table.Columns, d.Target)
		for r, row := range table.Rows {
			in := make([]Value, len(srcIdx))
			for i, idx := range srcIdx {
				in[i] = row[idx]
			}
			table.Rows[r] = append(row, d.Derive(in))
		}
	}
}

// selectArtifactColumns orders the output: the schema's non-date
// columns in declaration order, then the derived columns in derivation
// order. Date columns are intermediates consumed by derivations and
// never serialized.
func (p *Pipeline) selectArtifactColumns(table *Table) *Table {
	var keep []int
	var columns []string

	for _, rule := range p.schema.Columns {
		if rule.Kind == domain.KindDate {
			continue
		}
		keep = append(keep, table.ColumnIndex(rule.Name))
		columns = append(columns, rule.Name)
	}
	for _, d := range p.derivations {
		keep = append(keep, table.ColumnIndex(d.Target))
		columns = append(columns, d.Target)
	}

	rows := make([][]Value, len(table.Rows))
	for r, row := range table.Rows {
		out := make([]Value, len(keep))
		for i, idx := range keep {
			out[i] = row[idx]
		}
		rows[r] = out
	}

	return &Table{Columns: columns, Rows: rows}
}
