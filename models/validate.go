package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"chocobliss/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return ValidCategory(fl.Field().String())
	})
	return v
}

// Validate checks v against its validate tags and reports every failing
// field by its json path, for example "customer.address.city".
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fieldPath(fe.Namespace()), message(fe))
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " entries"
		}
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "numeric":
		return "must contain digits only"
	case "hexadecimal":
		return "must be a valid id"
	case "category":
		return "must be one of: " + strings.Join(Categories, ", ")
	default:
		return "is invalid"
	}
}
