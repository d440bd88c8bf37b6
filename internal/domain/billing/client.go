package billing

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
)

// ClientDetails identifies the customer a document is addressed to
type ClientDetails struct {
	Name        string `json:"client_name" validate:"required,max=100"`
	Email       string `json:"client_email" validate:"required,email,max=254"`
	Address     string `json:"client_address" validate:"required"`
	PhoneNumber string `json:"client_phone_number" validate:"required,max=32"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize trims surrounding whitespace so blank values are caught as missing
func (c ClientDetails) Normalize() ClientDetails {
	return ClientDetails{
		Name:        strings.TrimSpace(c.Name),
		Email:       strings.TrimSpace(c.Email),
		Address:     strings.TrimSpace(c.Address),
		PhoneNumber: strings.TrimSpace(c.PhoneNumber),
	}
}

// Validate checks all client fields are present and the email is well formed
func (c ClientDetails) Validate() error {
	err := structValidator().Struct(c.Normalize())
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &shared.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), clientFieldMessage(fe))
	}
	return verr
}

func clientFieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}

// mergeValidation folds field errors from err into verr. Errors that are not
// validation errors are returned unchanged.
func mergeValidation(verr *shared.ValidationError, err error) error {
	if err == nil {
		return nil
	}
	var ve *shared.ValidationError
	if errors.As(err, &ve) {
		verr.Fields = append(verr.Fields, ve.Fields...)
		return nil
	}
	return err
}
