package eligibility

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "scheme-assist/internal/common/errors"
	"scheme-assist/internal/models"
)

// FieldError describes one rejected profile field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidProfileError is returned when a profile fails validation. It unwraps
// to an INVALID_PROFILE StandardError.
type InvalidProfileError struct {
	Errors []FieldError

	std *apperrors.StandardError
}

func newInvalidProfileError(fields []FieldError) *InvalidProfileError {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return &InvalidProfileError{
		Errors: fields,
		std:    apperrors.NewInvalidProfileError(strings.Join(parts, "; ")),
	}
}

func (e *InvalidProfileError) Error() string {
	return "invalid profile: " + e.std.Details
}

func (e *InvalidProfileError) Unwrap() error {
	return e.std
}

// validator.Validate caches struct metadata internally and is safe for
// concurrent use.
var profileValidator = newProfileValidator()

func newProfileValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateProfile checks that every scored field is present and in range and
// returns the validated profile.
func ValidateProfile(in models.ProfileInput) (models.Profile, error) {
	if err := profileValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.Profile{}, err
		}
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return models.Profile{}, newInvalidProfileError(fields)
	}

	return models.Profile{
		State:        *in.State,
		Age:          *in.Age,
		AnnualIncome: *in.AnnualIncome,
		Category:     *in.Category,
		Gender:       in.Gender,
	}, nil
}

var errTrailingData = errors.New("unexpected data after profile object")

// DecodeProfile parses and validates a JSON profile document. Malformed JSON,
// trailing data and wrongly typed fields are reported as an InvalidProfileError.
func DecodeProfile(data []byte) (models.Profile, error) {
	var in models.ProfileInput
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&in); err != nil {
		return models.Profile{}, decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return models.Profile{}, decodeError(errTrailingData)
	}
	return ValidateProfile(in)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return newInvalidProfileError([]FieldError{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		}})
	}
	return newInvalidProfileError([]FieldError{{
		Field:   "body",
		Message: "profile must be a JSON object",
	}})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "state":
		return "Please select your state"
	case "age":
		if fe.Tag() == "required" {
			return "Please enter your age"
		}
		return "Please enter a valid age (0-120)"
	case "annualIncome":
		if fe.Tag() == "required" {
			return "Please enter your annual income"
		}
		return "Income cannot be negative"
	case "category":
		return "Please select a category"
	case "gender":
		return "Gender must be one of Male, Female or Other"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
