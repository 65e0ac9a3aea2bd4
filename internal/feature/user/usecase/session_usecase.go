package usecase

import (
	"context"
	"fmt"

	"course_backend/internal/feature/user/domain/entity"
)

// SessionStatus tells callers whether the current session is usable.
type SessionStatus string

const (
	// StatusLinked means the session carries an internal id and role.
	StatusLinked SessionStatus = "linked"
	// StatusNeedsSync means the caller must run the interactive sync first.
	StatusNeedsSync SessionStatus = "needs_sync"
)

// Resolution is the current caller as seen by permission checks.
type Resolution struct {
	Status     SessionStatus
	ExternalID string
	InternalID string
	Role       entity.Role
	// User is set only when the full row was requested.
	User *entity.User
}

// NeedsSync reports whether the caller must run the interactive sync.
func (r *Resolution) NeedsSync() bool {
	return r.Status == StatusNeedsSync
}

// UserReader loads a user by internal id, normally through the cache.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// SessionUsecase resolves the current request's caller. It never writes.
type SessionUsecase struct {
	sessions SessionSource
	users    UserReader
}

// NewSessionUsecase creates a SessionUsecase.
func NewSessionUsecase(sessions SessionSource, users UserReader) *SessionUsecase {
	return &SessionUsecase{sessions: sessions, users: users}
}

// Resolve returns the caller's resolution. Sessions without an internal id
// resolve to StatusNeedsSync instead of an error. When loadUser is set the
// full row is read through the cache.
func (u *SessionUsecase) Resolve(ctx context.Context, loadUser bool) (*Resolution, error) {
	s, err := u.sessions.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}

	if !s.Metadata.Linked() {
		return &Resolution{Status: StatusNeedsSync, ExternalID: s.ExternalID}, nil
	}

	res := &Resolution{
		Status:     StatusLinked,
		ExternalID: s.ExternalID,
		InternalID: s.Metadata.InternalID,
		Role:       entity.ParseRole(s.Metadata.Role),
	}
	if !loadUser {
		return res, nil
	}

	user, err := u.users.FindByID(ctx, res.InternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	res.User = user
	res.Role = user.Role
	return res, nil
}

// RequireRole resolves the caller and checks that it is linked and holds role.
// Admins satisfy every role.
func (u *SessionUsecase) RequireRole(ctx context.Context, role entity.Role) (*Resolution, error) {
	res, err := u.Resolve(ctx, false)
	if err != nil {
		return nil, err
	}
	if res.NeedsSync() {
		return res, nil
	}
	if res.Role != role && res.Role != entity.RoleAdmin {
		return nil, ErrForbidden
	}
	return res, nil
}
