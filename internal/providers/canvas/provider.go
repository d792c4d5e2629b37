package canvas

import (
	"context"

	"course-catalog/internal/domain"
)

// Provider adapts the Canvas client into providers.CatalogProvider.
type Provider struct {
	C    *Client
	Opts ListOptions
}

func (p Provider) Name() string { return "canvas" }

func (p Provider) ListCourses(ctx context.Context) ([]domain.CourseRecord, error) {
	courses, err := p.C.ListCourses(ctx, p.Opts)

	out := make([]domain.CourseRecord, 0, len(courses))
	for _, c := range courses {
		if c.AccessRestricted {
			p.C.Log.Debug("skipping restricted course", "id", string(c.ID))
			continue
		}
		rec, verr := domain.Normalize(c.record())
		if verr != nil {
			p.C.Log.Warn("skipping course", "err", verr)
			continue
		}
		out = append(out, rec)
	}
	return out, err
}
