package errs

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	ErrEmptyUsername      = errors.New("please enter your username")
	ErrEmptyPassword      = errors.New("please enter a password")
	ErrInvalidCredentials = errors.New("incorrect username or password")

	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrBookExists     = errors.New("book already exists")
	ErrSelfRemoval    = errors.New("you cannot remove your own account")
	ErrInvalidGender  = errors.New("gender must be one of male, female, other")

	ErrEmptyBill         = errors.New("the selected books list cannot be null or empty")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrInvalidQuantity   = errors.New("chosen quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAmountMismatch    = errors.New("total amount mismatch")

	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)
