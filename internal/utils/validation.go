package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"example.com/backstage/services/catalog/internal/result"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct validates a command or query using its validation tags and
// returns field-level errors in declaration order. A nil return means the
// input is valid.
func ValidateStruct(s interface{}) []result.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []result.FieldError{{Field: "", Message: err.Error()}}
	}

	fieldErrors := make([]result.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, result.FieldError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
		})
	}
	return fieldErrors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation on %s", fe.Tag())
	}
}

// CacheKey builds a namespaced cache key.
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
