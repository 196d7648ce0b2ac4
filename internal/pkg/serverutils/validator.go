package serverutils

import (
	"errors"
	"strings"

	"braincells-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRequest runs the struct's `validate` tags and reports the first
// failing field as an invalid-input error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		field := strings.ToLower(validationErrs[0].Field())
		return apperror.NewInvalidInput(field, "Invalid input")
	}

	return apperror.NewInvalidInput("", "Invalid input")
}
