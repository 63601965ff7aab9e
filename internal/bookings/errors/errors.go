package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrUserNotFound = errors.New("user not found")

	ErrDayFull = errors.New("day is at capacity")

	ErrAlreadyBooked = errors.New("user already holds a booking on this day")

	ErrLockHeld = errors.New("booking lock is held by another request")

	ErrCommitInProgress = errors.New("a selection commit is already in progress")

	ErrSessionNotFound = errors.New("booking session not found")
)
