package cache

import (
	"context"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/feature/user/usecase"
)

// CachingUserRepository decorates a UserRepository with the tag-invalidated memo.
// Reads by internal id are memoized under id:<id>-users; every mutation
// invalidates global:users and id:<id>-users after the inner write returned.
type CachingUserRepository struct {
	inner usecase.UserRepository
	memo  *Memo
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository wraps inner. A nil memo disables caching.
func NewCachingUserRepository(inner usecase.UserRepository, memo *Memo) *CachingUserRepository {
	if memo == nil {
		memo = NewMemo(NoopStore{}, nil)
	}
	return &CachingUserRepository{inner: inner, memo: memo}
}

// UpsertByExternalID upserts through the inner repository and invalidates the row's tags.
func (c *CachingUserRepository) UpsertByExternalID(ctx context.Context, u *entity.User) (*entity.User, error) {
	out, err := c.inner.UpsertByExternalID(ctx, u)
	if err != nil {
		return nil, err
	}
	c.memo.Invalidate(ctx, EntityTags(KindUsers, out.ID)...)
	return out, nil
}

// UpdateByExternalID updates through the inner repository and invalidates the row's tags.
func (c *CachingUserRepository) UpdateByExternalID(ctx context.Context, externalID string, patch entity.Patch) (*entity.User, error) {
	out, err := c.inner.UpdateByExternalID(ctx, externalID, patch)
	if err != nil {
		return nil, err
	}
	c.memo.Invalidate(ctx, EntityTags(KindUsers, out.ID)...)
	return out, nil
}

// SoftDeleteByExternalID redacts through the inner repository and invalidates the row's tags.
func (c *CachingUserRepository) SoftDeleteByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	out, err := c.inner.SoftDeleteByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	c.memo.Invalidate(ctx, EntityTags(KindUsers, out.ID)...)
	return out, nil
}

// FindByID returns the memoized user, loading it on a miss.
// Absent users are not memoized.
func (c *CachingUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := Fetch(ctx, c.memo, "users:id:"+id, []Tag{ByID(KindUsers, id)}, func(ctx context.Context) (*entity.User, error) {
		return c.inner.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// FindByExternalID reads through to the store without memoizing.
func (c *CachingUserRepository) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	return c.inner.FindByExternalID(ctx, externalID)
}
