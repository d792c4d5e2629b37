// Package jsonfile serves courses from a snapshot on disk, either one written
// by a previous fetch or a hand-maintained course list.
package jsonfile

import (
	"context"
	"fmt"
	"log/slog"

	"course-catalog/internal/domain"
	"course-catalog/internal/jsonstore"
)

type Provider struct {
	Store *jsonstore.Store
	Path  string

	// Optional; invalid records are logged here before being skipped.
	Log *slog.Logger
}

func (p Provider) Name() string { return "jsonfile:" + p.Path }

// ListCourses loads the snapshot and normalises every record the same way a
// live provider does. Records without an id are dropped.
func (p Provider) ListCourses(ctx context.Context) ([]domain.CourseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs, ok := p.Store.LoadCourses(p.Path)
	if !ok {
		return nil, fmt.Errorf("jsonfile: no usable snapshot at %s", p.Path)
	}

	log := p.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	out := make([]domain.CourseRecord, 0, len(recs))
	for _, r := range recs {
		rec, err := domain.Normalize(r)
		if err != nil {
			log.Warn("skipping course", "path", p.Path, "err", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
