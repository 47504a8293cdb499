package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/hrms-lite/internal/attendance"
	appErrors "github.com/noah-isme/hrms-lite/pkg/errors"
)

var personNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// NewValidator returns a validator with the HR field rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		return attendance.ValidDate(fl.Field().String())
	})
	return v
}

// validationError converts validator output into a VALIDATION_ERROR naming the first bad field.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", field)
	case "person_name":
		return fmt.Sprintf("%s must contain only letters and spaces", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "iso_date":
		return fmt.Sprintf("%s must be a date formatted YYYY-MM-DD", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
