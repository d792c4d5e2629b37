package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Unknown fills ParsedTitle fields the parser could not recover.
const Unknown = "Unknown"

// CourseRecord is the canonical course representation inside this service.
// Catalog providers map into this model at their boundary; the parser and the
// semester index only ever read ID and Name.
type CourseRecord struct {
	ID               CourseID `json:"id" validate:"required"`
	Name             string   `json:"name"`
	CourseCode       string   `json:"course_code,omitempty"`
	WorkflowState    string   `json:"workflow_state,omitempty"`
	AccountID        int64    `json:"account_id,omitempty"`
	EnrollmentTermID int64    `json:"enrollment_term_id,omitempty"`
	StartAt          string   `json:"start_at,omitempty"` // ISO string if available
	EndAt            string   `json:"end_at,omitempty"`
}

// CourseID holds a course identifier. Canvas sends numbers, hand-written
// snapshots sometimes carry strings; both decode into the same value.
type CourseID string

func (id CourseID) String() string { return string(id) }

// IsNumeric reports whether the id is a plain unsigned integer.
func (id CourseID) IsNumeric() bool {
	if id == "" {
		return false
	}
	n, err := strconv.ParseUint(string(id), 10, 64)
	return err == nil && strconv.FormatUint(n, 10) == string(id)
}

func (id *CourseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}

	// string: "81929"
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CourseID(strings.TrimSpace(s))
		return nil
	}

	// number: 81929
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("course id: %w", err)
	}
	*id = CourseID(n.String())
	return nil
}

// MarshalJSON writes numeric ids back as JSON numbers so cached snapshots keep
// the shape the API produced.
func (id CourseID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ParsedTitle is the normalized (title, year, semester) triple derived from a
// free-text course name.
type ParsedTitle struct {
	Title    string `json:"title"`
	Year     string `json:"year"`
	Semester string `json:"semester"`
}

// UnknownTitle is returned for names that carry no information at all.
func UnknownTitle() ParsedTitle {
	return ParsedTitle{Title: Unknown, Year: Unknown, Semester: Unknown}
}

// SemesterKey groups courses, formatted as "<year> <semester>" (e.g. "2025 Fall").
type SemesterKey string

func NewSemesterKey(year, semester string) SemesterKey {
	return SemesterKey(year + " " + semester)
}

// Split returns the year and semester halves of the key.
func (k SemesterKey) Split() (year, semester string) {
	y, s, ok := strings.Cut(string(k), " ")
	if !ok {
		return string(k), ""
	}
	return y, s
}

func (k SemesterKey) String() string { return string(k) }

// CourseMapping is a course record enriched with its parsed title, as stored in
// course mapping snapshots keyed by course id.
type CourseMapping struct {
	CourseName string `json:"course_name"`
	CourseCode string `json:"course_code"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	Semester   string `json:"semester"`
}
