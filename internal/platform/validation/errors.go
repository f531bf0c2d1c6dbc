package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorBody is a standard validation error payload.
type ErrorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

// ErrorResponse converts a validator error into a structured response. When
// required fields are absent the message names them.
func ErrorResponse(err error) ErrorBody {
	fields := map[string][]string{}
	var missing []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := fe.Field()
			fields[field] = append(fields[field], fe.Tag())
			if fe.Tag() == "required" {
				missing = append(missing, field)
			}
		}
	}
	switch {
	case len(fields) == 0:
		return ErrorBody{Error: err.Error(), Fields: fields}
	case len(missing) > 0:
		return ErrorBody{Error: "missing required fields: " + strings.Join(missing, ", "), Fields: fields}
	default:
		return ErrorBody{Error: "validation_failed", Fields: fields}
	}
}
