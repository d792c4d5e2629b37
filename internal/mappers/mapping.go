// Package mappers turns raw course records into the id → CourseMapping table
// used by reports and exports.
package mappers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"course-catalog/internal/coursename"
	"course-catalog/internal/domain"
)

// NoCode stands in for an empty course_code.
const NoCode = "N/A"

// Mapping is an insertion-ordered id → CourseMapping table. It marshals as a
// JSON object keyed by course id, in insertion order. The zero value is an
// empty mapping ready to use.
type Mapping struct {
	ids  []domain.CourseID
	byID map[domain.CourseID]domain.CourseMapping
}

func NewMapping() *Mapping {
	return &Mapping{byID: map[domain.CourseID]domain.CourseMapping{}}
}

// BuildMapping runs the free-form parser over every record. A repeated id
// keeps its first position and takes the last record's values.
func BuildMapping(records []domain.CourseRecord) *Mapping {
	m := NewMapping()
	for _, rec := range records {
		m.Set(rec.ID, FromRecord(rec))
	}
	return m
}

func FromRecord(rec domain.CourseRecord) domain.CourseMapping {
	code := rec.CourseCode
	if code == "" {
		code = NoCode
	}
	p := coursename.ParseTitle(rec.Name)
	return domain.CourseMapping{
		CourseName: rec.Name,
		CourseCode: code,
		Title:      p.Title,
		Year:       p.Year,
		Semester:   p.Semester,
	}
}

func (m *Mapping) Set(id domain.CourseID, cm domain.CourseMapping) {
	if m.byID == nil {
		m.byID = map[domain.CourseID]domain.CourseMapping{}
	}
	if _, ok := m.byID[id]; !ok {
		m.ids = append(m.ids, id)
	}
	m.byID[id] = cm
}

func (m *Mapping) Len() int { return len(m.ids) }

// IDs returns the course ids in insertion order.
func (m *Mapping) IDs() []domain.CourseID { return slices.Clone(m.ids) }

func (m *Mapping) FindByID(id domain.CourseID) (domain.CourseMapping, bool) {
	cm, ok := m.byID[id]
	return cm, ok
}

// FindByYearSemester keeps entries whose year and semester fields are exactly
// the given values. An empty argument matches only an empty field.
func (m *Mapping) FindByYearSemester(year, semester string) *Mapping {
	out := NewMapping()
	for _, id := range m.ids {
		cm := m.byID[id]
		if cm.Year == year && cm.Semester == semester {
			out.Set(id, cm)
		}
	}
	return out
}

// Years returns the distinct year values, sorted. Unknown is included when
// present.
func (m *Mapping) Years() []string {
	return m.distinct(func(cm domain.CourseMapping) string { return cm.Year })
}

func (m *Mapping) Semesters() []string {
	return m.distinct(func(cm domain.CourseMapping) string { return cm.Semester })
}

func (m *Mapping) distinct(field func(domain.CourseMapping) string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, id := range m.ids {
		v := field(m.byID[id])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

type Statistics struct {
	TotalCourses      int            `json:"total_courses"`
	Years             []string       `json:"years"`
	Semesters         []string       `json:"semesters"`
	CoursesByYear     map[string]int `json:"courses_by_year"`
	CoursesBySemester map[string]int `json:"courses_by_semester"`
}

func (m *Mapping) Statistics() Statistics {
	st := Statistics{
		TotalCourses:      m.Len(),
		Years:             m.Years(),
		Semesters:         m.Semesters(),
		CoursesByYear:     map[string]int{},
		CoursesBySemester: map[string]int{},
	}
	for _, id := range m.ids {
		cm := m.byID[id]
		st.CoursesByYear[cm.Year]++
		st.CoursesBySemester[cm.Semester]++
	}
	return st
}

func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, id := range m.ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(string(id)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(m.byID[id]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("mappers: mapping must be a JSON object, got %v", tok)
	}

	fresh := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var cm domain.CourseMapping
		if err := dec.Decode(&cm); err != nil {
			return fmt.Errorf("mappers: course %q: %w", key, err)
		}
		fresh.Set(domain.CourseID(key), cm)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = *fresh
	return nil
}
