// Package semester groups course records by the "(YYYY Semester)" marker in
// their names and answers year/semester queries over one catalog snapshot.
package semester

import (
	"slices"

	"course-catalog/internal/coursename"
	"course-catalog/internal/domain"
)

// Index maps semester keys to the courses carrying them. It is built once per
// catalog snapshot and never modified afterwards; a changed snapshot needs a
// new Build.
type Index struct {
	records []domain.CourseRecord
	buckets map[domain.SemesterKey][]domain.CourseRecord
}

// Build indexes records in input order. Records whose name has no
// parenthesised year/semester group are left out of every bucket.
func Build(records []domain.CourseRecord) *Index {
	idx := &Index{
		records: slices.Clone(records),
		buckets: make(map[domain.SemesterKey][]domain.CourseRecord),
	}
	for _, rec := range idx.records {
		key, ok := coursename.SemesterKeyOf(rec.Name)
		if !ok {
			continue
		}
		idx.buckets[key] = append(idx.buckets[key], rec)
	}
	return idx
}

// Lookup returns the bucket stored under "<year> <semester>".
//
// The key is matched exactly, so the semester must be spelled with the same
// capitalisation the course names use ("Fall", not "fall"). FilterRegex is
// the case-insensitive alternative.
func (idx *Index) Lookup(year, semester string) []domain.CourseRecord {
	return cloneOrEmpty(idx.buckets[domain.NewSemesterKey(year, semester)])
}

// FilterRegex rescans every record of the snapshot and returns those whose
// name carries year (exact match) and semester (any case).
func (idx *Index) FilterRegex(year, semester string) []domain.CourseRecord {
	out := []domain.CourseRecord{}
	for _, rec := range idx.records {
		if coursename.MatchesSemester(rec.Name, year, semester) {
			out = append(out, rec)
		}
	}
	return out
}

// Keys returns the populated semester keys in sorted order.
func (idx *Index) Keys() []domain.SemesterKey {
	keys := make([]domain.SemesterKey, 0, len(idx.buckets))
	for k := range idx.buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Count returns the size of one bucket.
func (idx *Index) Count(key domain.SemesterKey) int {
	return len(idx.buckets[key])
}

// Len is the number of records the index was built from.
func (idx *Index) Len() int { return len(idx.records) }

// Indexed is the number of records that landed in a bucket. It equals Len
// only when every course name carried a semester marker.
func (idx *Index) Indexed() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b)
	}
	return n
}

// Records returns the full snapshot in input order.
func (idx *Index) Records() []domain.CourseRecord {
	return cloneOrEmpty(idx.records)
}

// Unmatched returns the records that did not land in any bucket.
func (idx *Index) Unmatched() []domain.CourseRecord {
	out := []domain.CourseRecord{}
	for _, rec := range idx.records {
		if _, ok := coursename.SemesterKeyOf(rec.Name); !ok {
			out = append(out, rec)
		}
	}
	return out
}

func cloneOrEmpty(in []domain.CourseRecord) []domain.CourseRecord {
	if len(in) == 0 {
		return []domain.CourseRecord{}
	}
	return slices.Clone(in)
}
