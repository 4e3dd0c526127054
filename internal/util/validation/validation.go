// Package validation adapts go-playground/validator to domain.ValidationErrors.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/mkrupp/skillsphere/internal/domain"
)

// Messages maps "field.tag" or "field" to the text shown for a failed rule.
// Field names are the json names of the validated struct.
type Messages map[string]string

func (m Messages) lookup(fe validator.FieldError) string {
	if msg, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	if msg, ok := m[fe.Field()]; ok {
		return msg
	}

	return fe.Error()
}

// New returns a validator that reports fields by their json name. Besides the
// baked-in rules it knows "notblank", which rejects whitespace-only strings.
func New() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")

		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})

	return validate
}

// Struct validates s and translates rule failures into domain.ValidationErrors.
// Only the first failure per field is kept.
func Struct(ctx context.Context, validate *validator.Validate, s any, messages Messages) error {
	err := validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	verrs := domain.ValidationErrors{}
	for _, fe := range fieldErrs {
		verrs.Add(fe.Field(), messages.lookup(fe))
	}

	return verrs.Err()
}
