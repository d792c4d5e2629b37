package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims the free-text fields of a record coming from a catalog
// provider and checks it carries an id. The returned record is safe to hand to
// the parser and the semester index.
func Normalize(rec CourseRecord) (CourseRecord, error) {
	rec.ID = CourseID(strings.TrimSpace(string(rec.ID)))
	rec.Name = strings.TrimSpace(rec.Name)
	rec.CourseCode = strings.TrimSpace(rec.CourseCode)
	rec.WorkflowState = strings.TrimSpace(rec.WorkflowState)

	if err := validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return rec, fmt.Errorf("invalid course record %q: %s", rec.Name, strings.Join(fields, ", "))
		}
		return rec, fmt.Errorf("invalid course record %q: %w", rec.Name, err)
	}
	return rec, nil
}
