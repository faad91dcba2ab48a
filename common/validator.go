package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return ValidatePasswordComplexity(fl.Field().String()) == nil
	})
	return v
}

// Normalizer is implemented by payloads that clean up their fields, e.g.
// trimming an email, before validation.
type Normalizer interface {
	Normalize()
}

// ValidateAndDecode decodes the JSON body into payload, normalizes it and
// runs its `validate` tags. The returned error is ready to be sent to the client.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	if n, ok := payload.(Normalizer); ok {
		n.Normalize()
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewAppError(http.StatusBadRequest, describe(validationErrors[0]), err)
		}
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "password_policy":
		if err := ValidatePasswordComplexity(fe.Value().(string)); err != nil {
			return err.Error()
		}
	}
	return fe.Error()
}
