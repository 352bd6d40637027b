package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return sf.Name
		}
		return name
	})

	return v
}

// validateInput runs the struct rules of in and returns the failures keyed by
// JSON field name. An empty result means the input passed.
func validateInput(in any) (apperr.Fields, error) {
	fields := apperr.Fields{}

	err := validate.Struct(in)
	if err == nil {
		return fields, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}

	for _, fe := range validationErrors {
		fields.Add(fe.Field(), ruleMessage(fe.Field(), fe.Tag(), fe.Param()))
	}

	return fields, nil
}

func attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func ruleMessage(field, rule, param string) string {
	attr := attribute(field)

	switch rule {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", attr, param)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", attr, param)
	default:
		return fmt.Sprintf("The %s field is invalid.", attr)
	}
}

func takenMessage(field string) string {
	return fmt.Sprintf("The %s has already been taken.", attribute(field))
}
