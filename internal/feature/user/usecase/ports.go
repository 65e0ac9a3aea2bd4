package usecase

import (
	"context"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/platform/identity"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// UpsertByExternalID inserts u, or overwrites the mutable fields of the live
	// row with the same external id, and returns the resulting row.
	// It returns ErrUserNotFound if the external id belongs to a redacted user.
	UpsertByExternalID(ctx context.Context, u *entity.User) (*entity.User, error)

	// UpdateByExternalID applies patch to the live row with the external id.
	// It returns ErrUserNotFound if there is none.
	UpdateByExternalID(ctx context.Context, externalID string, patch entity.Patch) (*entity.User, error)

	// SoftDeleteByExternalID redacts the live row with the external id.
	// It returns ErrUserNotFound if there is none.
	SoftDeleteByExternalID(ctx context.Context, externalID string) (*entity.User, error)

	// FindByID retrieves a live user by internal id.
	// It returns ErrUserNotFound if the user does not exist or is redacted.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByExternalID retrieves a live user by external id.
	FindByExternalID(ctx context.Context, externalID string) (*entity.User, error)
}

// SessionSource yields the identity provider's view of the current caller.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*identity.Session, error)
}

// IdentityProvider is the subset of the identity provider the sync flow needs.
type IdentityProvider interface {
	SessionSource
	CurrentProfile(ctx context.Context) (*identity.Profile, error)
	UpdateMetadata(ctx context.Context, externalID string, md identity.Metadata) error
}

// SyncRecorder receives sync outcome counts.
type SyncRecorder interface {
	RecordSync(flow, outcome string)
}

type nopSyncRecorder struct{}

func (nopSyncRecorder) RecordSync(string, string) {}
