// Package snapshot compares two course snapshots so a fetch can tell whether
// the cached file and the semester index need rebuilding.
package snapshot

import (
	"strings"

	"course-catalog/internal/coursename"
	"course-catalog/internal/domain"
)

// Change is a course present in both snapshots with different fields.
type Change struct {
	ID     domain.CourseID     `json:"id"`
	Old    domain.CourseRecord `json:"old"`
	New    domain.CourseRecord `json:"new"`
	Fields []string            `json:"fields"`
}

// Renamed reports a name change. Names are compared byte for byte because
// semester keys are case-sensitive.
func (c Change) Renamed() bool { return c.Old.Name != c.New.Name }

// SemesterMoved reports whether the change moves the course to another
// semester bucket (or in or out of the index).
func (c Change) SemesterMoved() bool {
	oldKey, oldOK := coursename.SemesterKeyOf(c.Old.Name)
	newKey, newOK := coursename.SemesterKeyOf(c.New.Name)
	return oldOK != newOK || oldKey != newKey
}

type Result struct {
	Added   []domain.CourseRecord `json:"added"`
	Removed []domain.CourseRecord `json:"removed"`
	Changed []Change              `json:"changed"`
}

// Diff compares prev and cur by course id. Added and Changed follow the
// order of cur, Removed the order of prev. Records without an id are ignored.
func Diff(prev, cur []domain.CourseRecord) Result {
	oldByID := make(map[domain.CourseID]domain.CourseRecord, len(prev))
	for _, r := range prev {
		if strings.TrimSpace(string(r.ID)) == "" {
			continue
		}
		oldByID[r.ID] = r
	}
	newIDs := make(map[domain.CourseID]struct{}, len(cur))

	res := Result{
		Added:   []domain.CourseRecord{},
		Removed: []domain.CourseRecord{},
		Changed: []Change{},
	}

	for _, nr := range cur {
		if strings.TrimSpace(string(nr.ID)) == "" {
			continue
		}
		if _, dup := newIDs[nr.ID]; dup {
			continue
		}
		newIDs[nr.ID] = struct{}{}

		or, ok := oldByID[nr.ID]
		if !ok {
			res.Added = append(res.Added, nr)
			continue
		}
		if fields := changedFields(or, nr); len(fields) > 0 {
			res.Changed = append(res.Changed, Change{ID: nr.ID, Old: or, New: nr, Fields: fields})
		}
	}

	seenOld := make(map[domain.CourseID]struct{}, len(prev))
	for _, or := range prev {
		if _, ok := oldByID[or.ID]; !ok {
			continue
		}
		if _, dup := seenOld[or.ID]; dup {
			continue
		}
		seenOld[or.ID] = struct{}{}
		if _, ok := newIDs[or.ID]; !ok {
			res.Removed = append(res.Removed, or)
		}
	}

	return res
}

func changedFields(o, n domain.CourseRecord) []string {
	var fields []string
	if o.Name != n.Name {
		fields = append(fields, "name")
	}
	if norm(o.CourseCode) != norm(n.CourseCode) {
		fields = append(fields, "course_code")
	}
	if norm(o.WorkflowState) != norm(n.WorkflowState) {
		fields = append(fields, "workflow_state")
	}
	if o.EnrollmentTermID != n.EnrollmentTermID {
		fields = append(fields, "enrollment_term_id")
	}
	if norm(o.StartAt) != norm(n.StartAt) || norm(o.EndAt) != norm(n.EndAt) {
		fields = append(fields, "dates")
	}
	return fields
}

// Empty reports identical snapshots.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// NeedsRebuild reports whether a semester index built from the previous
// snapshot would differ from one built from the current one. Only names feed the
// index, so changes limited to other fields don't count.
func (r Result) NeedsRebuild() bool {
	if len(r.Added) > 0 || len(r.Removed) > 0 {
		return true
	}
	for _, c := range r.Changed {
		if c.Renamed() {
			return true
		}
	}
	return false
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
