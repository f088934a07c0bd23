package insights

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"vcpulse/internal/errors"
	"vcpulse/pkg/contracts/domain"
)

// Store holds the in-memory copy of the published cleaned dataset for
// the dashboard. It reads the artifact read-only, addressing columns
// by the shared canonical names, and can poll for the atomic replace
// performed by a new pipeline run.
type Store struct {
	path   string
	logger *slog.Logger

	mu          sync.RWMutex
	investments []domain.Investment
	loadedAt    time.Time
	modTime     time.Time
}

// NewStore creates a store over the artifact at path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logger.With(slog.String("component", "dataset_store")),
	}
}

// Load reads the artifact into memory, replacing any prior snapshot.
func (s *Store) Load(ctx context.Context) error {
	info, err := os.Stat(s.path)
	if err != nil {
		return errors.NewStorageError(fmt.Sprintf("stat dataset %s", s.path), err)
	}

	invs, err := readDataset(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.investments = invs
	s.loadedAt = time.Now()
	s.modTime = info.ModTime()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", s.path),
		slog.Int("records", len(invs)))
	return nil
}

// Investments returns the current snapshot. The slice is shared;
// callers must treat it as read-only.
func (s *Store) Investments() ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loadedAt.IsZero() {
		return nil, errors.NewNotFoundError("cleaned dataset")
	}
	return s.investments, nil
}

// RecordCount returns the number of rows in the current snapshot.
func (s *Store) RecordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.investments)
}

// LoadedAt returns when the current snapshot was read, zero if never.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch polls the artifact's modification time and reloads when a new
// pipeline run has replaced it, invoking onReload after each
// successful reload. It returns when ctx is done.
func (s *Store) Watch(ctx context.Context, interval time.Duration, onReload func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(s.path)
			if err != nil {
				continue
			}
			s.mu.RLock()
			stale := info.ModTime().After(s.modTime)
			s.mu.RUnlock()
			if !stale {
				continue
			}
			if err := s.Load(ctx); err != nil {
				s.logger.ErrorContext(ctx, "dataset reload failed",
					slog.String("error", err.Error()))
				continue
			}
			if onReload != nil {
				onReload()
			}
		}
	}
}

// readDataset parses the artifact. The missing sentinel (empty string)
// reads as the zero value on this consumer side; trend aggregations
// fence zeros off with the year floor.
func readDataset(path string) ([]domain.Investment, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("open dataset %s", path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewStorageError(fmt.Sprintf("read dataset %s", path), err)
	}
	if len(records) == 0 {
		return nil, errors.NewStorageError(fmt.Sprintf("dataset %s has no header", path), nil)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}

	cell := func(row []string, name string) string {
		if idx, ok := col[name]; ok && idx < len(row) {
			return row[idx]
		}
		return domain.MissingToken
	}
	float := func(row []string, name string) float64 {
		f, _ := strconv.ParseFloat(cell(row, name), 64)
		return f
	}
	integer := func(row []string, name string) int {
		i, _ := strconv.Atoi(cell(row, name))
		return i
	}

	invs := make([]domain.Investment, 0, len(records)-1)
	for _, row := range records[1:] {
		invs = append(invs, domain.Investment{
			Name:             cell(row, domain.ColName),
			CategoryList:     cell(row, domain.ColCategoryList),
			PrimaryCategory:  cell(row, domain.ColPrimaryCategory),
			FundingTotalUSD:  float(row, domain.ColFundingTotalUSD),
			FundingRounds:    integer(row, domain.ColFundingRounds),
			Status:           cell(row, domain.ColStatus),
			Country:          cell(row, domain.ColCountry),
			FoundedYear:      integer(row, domain.ColFoundedYear),
			FirstFundingYear: integer(row, domain.ColFirstFundingYear),
		})
	}

	return invs, nil
}
