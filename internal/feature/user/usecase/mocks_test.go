package usecase

import (
	"context"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/platform/identity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	UpsertByExternalIDFunc     func(ctx context.Context, u *entity.User) (*entity.User, error)
	UpdateByExternalIDFunc     func(ctx context.Context, externalID string, patch entity.Patch) (*entity.User, error)
	SoftDeleteByExternalIDFunc func(ctx context.Context, externalID string) (*entity.User, error)
	FindByIDFunc               func(ctx context.Context, id string) (*entity.User, error)
	FindByExternalIDFunc       func(ctx context.Context, externalID string) (*entity.User, error)

	upsertCalls int
}

func (m *mockUserRepository) UpsertByExternalID(ctx context.Context, u *entity.User) (*entity.User, error) {
	m.upsertCalls++
	if m.UpsertByExternalIDFunc != nil {
		return m.UpsertByExternalIDFunc(ctx, u)
	}
	// Default: echo the record back with a fixed id
	out := *u
	out.ID = "u1"
	return &out, nil
}

func (m *mockUserRepository) UpdateByExternalID(ctx context.Context, externalID string, patch entity.Patch) (*entity.User, error) {
	if m.UpdateByExternalIDFunc != nil {
		return m.UpdateByExternalIDFunc(ctx, externalID, patch)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) SoftDeleteByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	if m.SoftDeleteByExternalIDFunc != nil {
		return m.SoftDeleteByExternalIDFunc(ctx, externalID)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	if m.FindByExternalIDFunc != nil {
		return m.FindByExternalIDFunc(ctx, externalID)
	}
	return nil, ErrUserNotFound
}

// mockIdentityProvider is a mock implementation of the IdentityProvider interface.
type mockIdentityProvider struct {
	CurrentSessionFunc func(ctx context.Context) (*identity.Session, error)
	CurrentProfileFunc func(ctx context.Context) (*identity.Profile, error)
	UpdateMetadataFunc func(ctx context.Context, externalID string, md identity.Metadata) error

	metadataCalls int
}

func (m *mockIdentityProvider) CurrentSession(ctx context.Context) (*identity.Session, error) {
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	return nil, identity.ErrNoSession
}

func (m *mockIdentityProvider) CurrentProfile(ctx context.Context) (*identity.Profile, error) {
	if m.CurrentProfileFunc != nil {
		return m.CurrentProfileFunc(ctx)
	}
	return nil, identity.ErrNoSession
}

func (m *mockIdentityProvider) UpdateMetadata(ctx context.Context, externalID string, md identity.Metadata) error {
	m.metadataCalls++
	if m.UpdateMetadataFunc != nil {
		return m.UpdateMetadataFunc(ctx, externalID, md)
	}
	return nil
}

// recordingSyncRecorder remembers every outcome it was given.
type recordingSyncRecorder struct {
	outcomes []string
}

func (r *recordingSyncRecorder) RecordSync(flow, outcome string) {
	r.outcomes = append(r.outcomes, flow+":"+outcome)
}
