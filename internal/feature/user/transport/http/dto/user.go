// Package dto converts user feature results to API bodies.
package dto

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"course_backend/internal/api"
	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/feature/user/usecase"
)

// User converts a user row to its public representation.
func User(u *entity.User) api.UserResponse {
	return api.UserResponse{
		Id:        u.ID,
		Name:      u.Name,
		Email:     openapi_types.Email(u.Email),
		ImageUrl:  u.ImageURL,
		Role:      api.UserRole(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Session converts a resolution to its public representation.
func Session(r *usecase.Resolution) api.SessionResponse {
	out := api.SessionResponse{
		Status:     api.SessionStatus(r.Status),
		ExternalId: r.ExternalID,
	}
	if r.NeedsSync() {
		return out
	}
	id := r.InternalID
	role := api.UserRole(r.Role)
	out.InternalId = &id
	out.Role = &role
	if r.User != nil {
		u := User(r.User)
		out.User = &u
	}
	return out
}
