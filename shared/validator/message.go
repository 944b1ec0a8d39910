package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var templates = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"email":    "{field} must be a valid email address",
	"datetime": "{field} must match the format {param}",
	"notpast":  "{field} cannot be in the past",
	"unique":   "{field} must not contain duplicates",
	"http_url": "{field} must be a valid http or https URL",
}

// message describes the first failed rule in client terms. Rules without a template
// fall back to a generic sentence so struct internals never reach the response.
func message(err error) string {
	var fieldErrors val.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return err.Error()
	}

	return describe(fieldErrors[0])
}

func describe(fieldErr val.FieldError) string {
	field := fieldErr.Field()
	if field == "" {
		field = "value"
	}

	template, ok := templates[fieldErr.Tag()]
	if !ok {
		template = "{field} is invalid"
	}

	return strings.NewReplacer("{field}", field, "{param}", fieldErr.Param()).Replace(template)
}
