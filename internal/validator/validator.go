package validator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/db"
	"github.com/septivank/energy-metering-api/tools/timeparser"
)

// Field names one recognized request parameter and whether it must be
// present. Schema order determines the order of reported violations.
type Field struct {
	Name     string
	Required bool
}

// Schema is the ordered parameter contract of one endpoint.
type Schema []Field

// Values holds the typed, range-checked parameters of a request. Only
// parameters that were present in the input are set; optional integers and
// dates use nil for absence.
type Values struct {
	Login      string
	Password   string
	SessionID  string
	Resolution db.Resolution
	Start      *time.Time
	Count      *int
	Duration   *int
}

// Validate converts raw request parameters into typed values per schema.
// An absent parameter and an empty string are equivalent. Every violated
// rule is collected; the returned error is an apperrors validation failure
// carrying the full ordered list, or nil when everything converted.
func Validate(raw map[string]string, schema Schema) (*Values, error) {
	var violations []string
	vals := &Values{}

	for _, field := range schema {
		value := raw[field.Name]
		if value == "" {
			if field.Required {
				violations = append(violations, fmt.Sprintf("Parameter '%s' is missing", field.Name))
			}
			continue
		}

		switch field.Name {
		case "resolution":
			switch db.Resolution(value) {
			case db.ResolutionDaily, db.ResolutionMonthly:
				vals.Resolution = db.Resolution(value)
			default:
				violations = append(violations, fmt.Sprintf("Parameter '%s' accepts only values D or M", field.Name))
			}
		case "count", "duration":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				violations = append(violations, fmt.Sprintf("Parameter '%s' must be positive integer", field.Name))
				continue
			}
			if field.Name == "count" {
				vals.Count = &n
			} else {
				vals.Duration = &n
			}
		case "start":
			t, err := timeparser.ParseDate(value)
			if err != nil {
				violations = append(violations, fmt.Sprintf("Parameter '%s' must match format 'YYYY-mm-dd'", field.Name))
				continue
			}
			vals.Start = &t
		case "login":
			vals.Login = value
		case "password":
			vals.Password = value
		case "session_id":
			vals.SessionID = value
		}
	}

	if len(violations) > 0 {
		return nil, apperrors.Validation(violations)
	}
	return vals, nil
}
