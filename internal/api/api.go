// Package api defines the JSON request and response bodies of the HTTP API.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for UserRole.
const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Defines values for SessionStatus.
const (
	SessionStatusLinked    SessionStatus = "linked"
	SessionStatusNeedsSync SessionStatus = "needs_sync"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse defines model for MessageResponse.
type MessageResponse struct {
	Message string `json:"message"`
}

// SyncRequiredResponse is returned with 409 when the caller must run the interactive sync.
type SyncRequiredResponse struct {
	Error   string `json:"error"`
	SyncUrl string `json:"sync_url"`
}

// UserRole defines model for UserRole.
type UserRole string

// SessionStatus defines model for SessionStatus.
type SessionStatus string

// UserResponse defines model for UserResponse.
type UserResponse struct {
	Id        string              `json:"id"`
	Name      string              `json:"name"`
	Email     openapi_types.Email `json:"email"`
	ImageUrl  *string             `json:"image_url,omitempty"`
	Role      UserRole            `json:"role"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// SessionResponse defines model for SessionResponse.
type SessionResponse struct {
	Status     SessionStatus `json:"status"`
	ExternalId string        `json:"external_id"`
	InternalId *string       `json:"internal_id,omitempty"`
	Role       *UserRole     `json:"role,omitempty"`
	User       *UserResponse `json:"user,omitempty"`
}

// CourseResponse defines model for CourseResponse.
type CourseResponse struct {
	Id           openapi_types.UUID `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	PriceInCents int64              `json:"price_in_cents"`
	CreatedAt    time.Time          `json:"created_at"`
}

// CreateCourseRequest defines model for CreateCourseRequest.
type CreateCourseRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Description  string `json:"description" binding:"max=4000"`
	PriceInCents int64  `json:"price_in_cents" binding:"gte=0"`
}

// PurchaseResponse defines model for PurchaseResponse.
type PurchaseResponse struct {
	Id               openapi_types.UUID `json:"id"`
	UserId           string             `json:"user_id"`
	CourseId         openapi_types.UUID `json:"course_id"`
	PricePaidInCents int64              `json:"price_paid_in_cents"`
	CreatedAt        time.Time          `json:"created_at"`
}

// CreatePurchaseRequest defines model for CreatePurchaseRequest.
type CreatePurchaseRequest struct {
	UserId   string             `json:"user_id" binding:"required"`
	CourseId openapi_types.UUID `json:"course_id"`
}
