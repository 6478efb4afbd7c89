package models

import "errors"

// Error taxonomy shared by the store, the services and the API.
var (
	ErrNotFound            = errors.New("not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrConstraintViolation = errors.New("constraint violation")
)
