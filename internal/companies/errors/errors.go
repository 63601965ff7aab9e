package errors

import "errors"

var (
	ErrNotFound = errors.New("company not found")

	ErrInvalidID = errors.New("invalid company ID format")

	ErrDuplicateDomain = errors.New("email domain already registered")

	ErrDuplicateEmail = errors.New("admin email already registered")
)
