package errors

import "errors"

var (
	ErrNotFound = errors.New("location not found")

	ErrInvalidID = errors.New("invalid location ID format")

	ErrDuplicateAccessCode = errors.New("access code already in use")

	ErrDuplicatePIN = errors.New("PIN already in use within company")

	ErrCodeExhausted = errors.New("could not generate a unique access code")
)
