package apperror

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// MapValidationError converts validator errors into an AppError whose
// Details lists a message per failed field. Field names come from the
// json tag (registered in Init).
func MapValidationError(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := make(map[string]string, len(errs))
		for _, e := range errs {
			field := e.Field()
			switch e.Tag() {
			case "required":
				details[field] = formatFieldName(field) + " is required"
			default:
				details[field] = formatFieldName(field) + " is invalid"
			}
		}
		return ErrInvalidInput.WithDetails(details)
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
