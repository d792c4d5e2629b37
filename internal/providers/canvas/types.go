package canvas

import (
	"encoding/json"

	"course-catalog/internal/domain"
)

// Course is the subset of the Canvas course object we keep. Canvas returns
// ids as numbers, or as strings when the token asks for string ids.
type Course struct {
	ID               domain.CourseID `json:"id"`
	Name             string          `json:"name"`
	CourseCode       string          `json:"course_code"`
	WorkflowState    string          `json:"workflow_state"`
	AccountID        int64           `json:"account_id"`
	EnrollmentTermID int64           `json:"enrollment_term_id"`
	StartAt          string          `json:"start_at"`
	EndAt            string          `json:"end_at"`

	// Restricted courses come back as {"id": 1, "access_restricted_by_date": true}.
	AccessRestricted bool `json:"access_restricted_by_date"`

	Term *Term `json:"term,omitempty"`
}

type Term struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	StartAt string      `json:"start_at"`
	EndAt   string      `json:"end_at"`
}

func (c Course) record() domain.CourseRecord {
	return domain.CourseRecord{
		ID:               c.ID,
		Name:             c.Name,
		CourseCode:       c.CourseCode,
		WorkflowState:    c.WorkflowState,
		AccountID:        c.AccountID,
		EnrollmentTermID: c.EnrollmentTermID,
		StartAt:          c.StartAt,
		EndAt:            c.EndAt,
	}
}
