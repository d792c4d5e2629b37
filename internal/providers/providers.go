package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"course-catalog/internal/concurrency"
	"course-catalog/internal/domain"
)

// CatalogProvider is a source of raw course records (Canvas, a cached file).
type CatalogProvider interface {
	Name() string
	ListCourses(ctx context.Context) ([]domain.CourseRecord, error)
}

// FetchAll queries every provider on the worker pool and merges the results
// in provider order. A course id seen twice keeps its first record. Partial
// results are returned alongside the joined provider errors.
func FetchAll(ctx context.Context, provs []CatalogProvider, opts concurrency.ParallelOptions, logger *slog.Logger) ([]domain.CourseRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}

	batches, errs := concurrency.ProcessParallel(ctx, provs, opts, func(ctx context.Context, _ int, p CatalogProvider) ([]domain.CourseRecord, error) {
		recs, err := p.ListCourses(ctx)
		if err != nil {
			logger.Error("provider failed", "provider", p.Name(), "courses", len(recs), "err", err)
			return recs, fmt.Errorf("%s: %w", p.Name(), err)
		}
		logger.Info("provider done", "provider", p.Name(), "courses", len(recs))
		return recs, nil
	})

	seen := make(map[domain.CourseID]struct{})
	out := []domain.CourseRecord{}
	dups := 0
	for _, batch := range batches {
		for _, rec := range batch {
			if _, ok := seen[rec.ID]; ok {
				dups++
				continue
			}
			seen[rec.ID] = struct{}{}
			out = append(out, rec)
		}
	}
	if dups > 0 {
		logger.Debug("dropped duplicate courses", "count", dups)
	}

	return out, errors.Join(errs...)
}
