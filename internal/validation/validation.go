package validation

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// decimals are compared numerically by gte/lte tags
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		d, ok := v.Interface().(decimal.Decimal)
		if !ok {
			return nil
		}
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})
}

// Struct validates a struct against its validation tags
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// Var validates a single value against a tag expression
func Var(v interface{}, tag string) error {
	return validate.Var(v, tag)
}

// FieldError represents a field validation error
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// FormatErrors converts validator errors to a readable format
func FormatErrors(err error) []FieldError {
	var fieldErrors []FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getErrorMessage(e),
			})
		}
	}

	return fieldErrors
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "oneof":
		return "Value must be one of: " + e.Param()
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "min":
		return "At least " + e.Param() + " values are required"
	default:
		return "Invalid value"
	}
}
