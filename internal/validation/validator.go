// Package validation wraps go-playground/validator with the domain tags used
// by request bodies and adapts it to fiber's StructValidator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"book-discovery-recommendation-service/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// RequestValidationError collects the failed rules of one request body.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator with the domain tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister("mood", func(fl validator.FieldLevel) bool {
			return models.Mood(fl.Field().String()).Valid()
		})
		mustRegister("complexity", func(fl validator.FieldLevel) bool {
			return models.Complexity(fl.Field().String()).Valid()
		})
		mustRegister("personality", func(fl validator.FieldLevel) bool {
			return models.Personality(fl.Field().String()).Valid()
		})
		mustRegister("interaction", func(fl validator.FieldLevel) bool {
			return models.InteractionType(fl.Field().String()).Valid()
		})
	})
	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// ValidateStruct returns nil or a *RequestValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	fields := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{Fields: fields}
}

// StructValidator plugs ValidateStruct into fiber's binder.
type StructValidator struct{}

func (StructValidator) Validate(out any) error {
	return ValidateStruct(out)
}

var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"mood":        "%s must be one of: " + joinValues(models.Moods),
	"complexity":  "%s must be one of: " + joinValues(models.Complexities),
	"personality": "%s must be one of: " + joinValues(models.Personalities),
	"interaction": "%s must be one of: " + joinValues(models.InteractionTypes),
}

var errorMessageWithParam = map[string]string{
	"gt":  "%s must be greater than %s",
	"gte": "%s must be greater than or equal to %s",
	"min": "%s must be at least %s",
	"max": "%s must be at most %s",
}

func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		if fe.Kind().String() == "slice" && (fe.Tag() == "min" || fe.Tag() == "max") {
			return fmt.Sprintf(template+" items", fe.Field(), fe.Param())
		}
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
