package domain

import "errors"

var (
	// ErrUnauthorized is returned when a request carries no usable credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when a username/password pair does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned when a verified identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation, e.g. a taken username.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps persistence failures.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrStatisticsUnavailable is returned when any read behind the statistics report fails.
	ErrStatisticsUnavailable = errors.New("statistics unavailable")
)
