// Package exporter persists the cleaned dataset. The only concurrency
// safeguard in the whole system is here: the artifact is written to a
// temporary file in the target directory and renamed into place, so a
// dashboard or chart process reading at any moment sees either the old
// artifact or the new one, never a partial file.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"vcpulse/internal/cleaning"
	"vcpulse/internal/errors"
)

// DatasetWriter serializes cleaned tables to CSV with atomic replace.
type DatasetWriter struct {
	logger *slog.Logger
}

// NewDatasetWriter creates a dataset writer.
func NewDatasetWriter(logger *slog.Logger) *DatasetWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetWriter{logger: logger.With(slog.String("component", "dataset_writer"))}
}

// Write serializes the table to path. Column order follows
// table.Columns (the documented artifact order), numeric cells carry
// no grouping separators, and the missing sentinel serializes as the
// empty string.
func (w *DatasetWriter) Write(path string, table *cleaning.Table) error {
	w.logger.Info("writing cleaned dataset",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))

	return WriteAtomic(path, func(out io.Writer) error {
		writer := csv.NewWriter(out)

		if err := writer.Write(table.Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}

		record := make([]string, len(table.Columns))
		for i, row := range table.Rows {
			for j, cell := range row {
				record[j] = cell.Token()
			}
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("write record %d: %w", i, err)
			}
		}

		writer.Flush()
		return writer.Error()
	})
}

// WriteAtomic runs write against a temporary file in path's directory,
// then renames it over path. On any failure the temporary file is
// removed and the previously published file is left untouched.
func WriteAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError(fmt.Sprintf("create output directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.NewStorageError("create temporary artifact", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(cause error, during string) error {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.NewStorageError(during, cause)
	}

	if err := write(tmp); err != nil {
		return cleanup(err, "serialize artifact")
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err, "sync artifact")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError("close temporary artifact", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.NewStorageError(fmt.Sprintf("publish artifact %s", path), err)
	}

	return nil
}
