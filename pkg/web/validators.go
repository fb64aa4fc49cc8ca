package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// Gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func Gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// Lte returns a ParamValidator that checks if the argument is less than or equal to the value captured in the closure.
func Lte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue <= closedValue
	})
}

// ParseOptionalInt reads an optional integer query parameter. present is false when the
// parameter is absent; ok is false when a 400 has already been written.
func ParseOptionalInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, validators ...ParamValidator) (value int32, present bool, ok bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, true
	}
	intValue, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
		return 0, true, false
	}
	for _, v := range validators {
		if !v(intValue) {
			RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, raw))
			return 0, true, false
		}
	}
	return int32(intValue), true, true
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidationMessage flattens validator errors into one line, e.g.
// "name failed on rule: required, price failed on rule: required".
func ValidationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request body"
	}
	parts := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		parts = append(parts, fieldErr.Field()+" failed on rule: "+fieldErr.Tag())
	}
	return strings.Join(parts, ", ")
}
