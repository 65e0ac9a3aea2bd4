// Package usecase implements the business logic for the catalog feature.
package usecase

import "errors"

var (
	// ErrValidation is returned when a request field is out of range.
	ErrValidation = errors.New("validation failed")

	// ErrCourseNotFound is returned when a course id matches no course.
	ErrCourseNotFound = errors.New("course not found")

	// ErrAlreadyPurchased is returned when the user already holds the course.
	ErrAlreadyPurchased = errors.New("course already purchased")
)
