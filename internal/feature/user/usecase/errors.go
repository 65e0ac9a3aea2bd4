// Package usecase implements the business logic for the user feature.
package usecase

import "errors"

var (
	// ErrValidation is returned when a required field cannot be derived from the
	// identity provider's data, e.g. a profile without any email address.
	ErrValidation = errors.New("validation failed")

	// ErrUserNotFound is returned when a user cannot be found by id or external id,
	// including when the only matching row has been redacted.
	ErrUserNotFound = errors.New("user not found")

	// ErrRepository is returned when the relational write produced no row for a
	// reason other than not-found, e.g. a constraint violation or a lost connection.
	ErrRepository = errors.New("repository write failed")

	// ErrForbidden is returned when a linked session lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
