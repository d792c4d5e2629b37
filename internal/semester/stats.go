package semester

import (
	"slices"

	"course-catalog/internal/domain"
)

// Stats summarises an index for reporting.
type Stats struct {
	TotalCourses      int            `json:"total_courses"`
	IndexedCourses    int            `json:"indexed_courses"`
	Semesters         int            `json:"semester_keys"`
	Years             []string       `json:"years"`
	SemesterNames     []string       `json:"semesters"`
	CoursesByYear     map[string]int `json:"courses_by_year"`
	CoursesBySemester map[string]int `json:"courses_by_semester"`
}

// Stats counts courses per year and per semester name by splitting the
// populated keys back into their halves.
func (idx *Index) Stats() Stats {
	st := Stats{
		TotalCourses:      idx.Len(),
		IndexedCourses:    idx.Indexed(),
		CoursesByYear:     map[string]int{},
		CoursesBySemester: map[string]int{},
	}

	keys := idx.Keys()
	st.Semesters = len(keys)
	for _, k := range keys {
		year, sem := k.Split()
		n := idx.Count(k)
		st.CoursesByYear[year] += n
		st.CoursesBySemester[sem] += n
	}

	st.Years = sortedKeys(st.CoursesByYear)
	st.SemesterNames = sortedKeys(st.CoursesBySemester)
	return st
}

// YearKeys returns the populated keys of one year.
func (idx *Index) YearKeys(year string) []domain.SemesterKey {
	var out []domain.SemesterKey
	for _, k := range idx.Keys() {
		if y, _ := k.Split(); y == year {
			out = append(out, k)
		}
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
