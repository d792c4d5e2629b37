package export

import (
	"encoding/csv"
	"io"

	"course-catalog/internal/mappers"
)

var mappingHeader = []string{
	"course_id",
	"course_name",
	"course_code",
	"title",
	"year",
	"semester",
}

// WriteMappingCSV writes one row per mapped course in mapping order.
func WriteMappingCSV(w io.Writer, m *mappers.Mapping) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(mappingHeader); err != nil {
		return err
	}
	for _, id := range m.IDs() {
		cm, _ := m.FindByID(id)
		row := []string{string(id), cm.CourseName, cm.CourseCode, cm.Title, cm.Year, cm.Semester}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
