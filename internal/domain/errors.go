package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Contact errors
	ErrContactNotFound = errors.New("contact not found")
	ErrContactExists   = errors.New("contact with this email already exists")

	// Validation errors
	ErrInvalidContact = errors.New("invalid contact")
	ErrInvalidID      = errors.New("invalid contact id")
)
