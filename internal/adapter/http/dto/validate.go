package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/iho/fxledger/internal/domain"
)

// ErrInvalidRequest marks a malformed body that no domain error describes.
var ErrInvalidRequest = errors.New("invalid request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		return domain.Currency(fl.Field().String()).IsValid()
	})

	return v
}

// fieldErrors maps request fields onto the domain error they violate.
var fieldErrors = map[string]error{
	"Amount":         domain.ErrInvalidAmount,
	"OpeningBalance": domain.ErrInvalidAmount,
	"Currency":       domain.ErrInvalidCurrency,
	"Rate":           domain.ErrInvalidRate,
	"Username":       domain.ErrInvalidUsername,
}

// Validate checks req against its validate tags. The returned error wraps
// the domain sentinel of the first failing field, or ErrInvalidRequest.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	fe := verrs[0]
	sentinel, ok := fieldErrors[fe.StructField()]
	if !ok {
		sentinel = ErrInvalidRequest
	}

	return fmt.Errorf("%w: field %s failed %q", sentinel, fe.Field(), fe.Tag())
}
