package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"course-catalog/internal/concurrency"
	"course-catalog/internal/domain"
	"course-catalog/internal/jsonstore"
	"course-catalog/internal/semester"
)

// SemesterFileName is the export name of one semester bucket,
// e.g. "2025_Fall_courses.json".
func SemesterFileName(key domain.SemesterKey) string {
	year, sem := key.Split()
	return SafeFilename(year+"_"+sem+"_courses", DefaultMaxFilename) + ".json"
}

// WriteSemesterFiles writes every populated semester of idx to its own JSON
// file under dir. Paths are returned in key order; failed keys are left out
// and their errors joined.
func WriteSemesterFiles(ctx context.Context, store *jsonstore.Store, idx *semester.Index, dir string, opts concurrency.ParallelOptions) ([]string, error) {
	keys := idx.Keys()

	paths, errs := concurrency.ProcessParallel(ctx, keys, opts, func(_ context.Context, _ int, key domain.SemesterKey) (string, error) {
		year, sem := key.Split()
		path := filepath.Join(dir, SemesterFileName(key))
		if err := store.Save(path, idx.Lookup(year, sem)); err != nil {
			return "", fmt.Errorf("export %s: %w", key, err)
		}
		return path, nil
	})

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, errors.Join(errs...)
}
