package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

var registerOnce sync.Once

// Register installs the custom rules and json field naming on gin's validator engine.
// It is safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

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

		if err = v.RegisterValidation("before_today", beforeToday); err != nil {
			return
		}
	})
	return err
}

// beforeToday accepts a YYYY-MM-DD string strictly before the current date.
func beforeToday(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	y, m, day := time.Now().Date()
	return d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// Translate converts a binding error into an AppError. Field failures become a
// 422 with one message per field; malformed bodies become a 400.
func Translate(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = append(fields[fe.Field()], message(fe))
		}
		return errors.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return errors.FieldError(field, fmt.Sprintf("The %s has an invalid type.", Humanize(field)))
	}

	var timeErr *time.ParseError
	if stderrors.As(err, &timeErr) {
		return errors.FieldError("date", "The date is not a valid date.")
	}

	return errors.BadRequest("malformed request body", err)
}

func message(fe validator.FieldError) string {
	field := Humanize(fe.Field())
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", Humanize(strings.TrimSuffix(fe.Field(), "_confirmation")))
	case "datetime":
		return fmt.Sprintf("The %s is not a valid date.", field)
	case "before_today":
		return fmt.Sprintf("The %s must be a date before today.", field)
	case "uuid":
		return fmt.Sprintf("The %s must be a valid UUID.", field)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}

// Humanize turns a snake_case field name into the words used in messages.
func Humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
