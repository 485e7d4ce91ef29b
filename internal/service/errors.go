package service

import (
	"errors"
	"fmt"
)

// Error categories. Every failure a handler can explain to the user wraps
// exactly one of these; anything else is a storage failure.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrConflict   = errors.New("state conflict")
)

var (
	ErrNotRegistered     = fmt.Errorf("%w: registration is incomplete", ErrPermission)
	ErrNotAdmin          = fmt.Errorf("%w: admin role required", ErrPermission)
	ErrNotSuperAdmin     = fmt.Errorf("%w: super admin role required", ErrPermission)
	ErrInvalidProductID  = fmt.Errorf("%w: product id must be a positive integer", ErrValidation)
	ErrInvalidTelegramID = fmt.Errorf("%w: telegram id must be an integer", ErrValidation)
	ErrInvalidRole       = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrInvalidField      = fmt.Errorf("%w: field is not editable", ErrValidation)
	ErrInvalidSize       = fmt.Errorf("%w: unknown size", ErrValidation)
	ErrInvalidMaterial   = fmt.Errorf("%w: unknown material", ErrValidation)
	ErrInvalidPrice      = fmt.Errorf("%w: price must be a non-negative decimal", ErrValidation)
	ErrInvalidStock      = fmt.Errorf("%w: stock must be a non-negative integer", ErrValidation)
	ErrEmptyValue        = fmt.Errorf("%w: value must not be empty", ErrValidation)
	ErrEmailTooLong      = fmt.Errorf("%w: email is longer than 254 characters", ErrValidation)
	ErrPhoneTooLong      = fmt.Errorf("%w: phone is longer than 32 characters", ErrValidation)
	ErrNameTooLong       = fmt.Errorf("%w: name is longer than 255 characters", ErrValidation)
	ErrColorTooLong      = fmt.Errorf("%w: color is longer than 50 characters", ErrValidation)
	ErrPriceOutOfRange   = fmt.Errorf("%w: price must be below 100000000 with at most 2 decimal places", ErrValidation)
	ErrStockOutOfRange   = fmt.Errorf("%w: stock is too large", ErrValidation)
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
	ErrProductNotFound   = fmt.Errorf("%w: product", ErrNotFound)
	ErrUserExists        = fmt.Errorf("%w: user already exists", ErrConflict)
	ErrOutOfStock        = fmt.Errorf("%w: out of stock", ErrConflict)
	ErrProductReferenced = fmt.Errorf("%w: product is referenced by orders", ErrConflict)
)

// IsUserFacing reports whether err belongs to one of the explainable categories
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrPermission) ||
		errors.Is(err, ErrConflict)
}
