package cache

import (
	"context"

	"github.com/google/uuid"

	"course_backend/internal/feature/catalog/domain/entity"
	"course_backend/internal/feature/catalog/usecase"
)

// CachingCatalogRepository decorates a CatalogRepository with the tag-invalidated memo.
type CachingCatalogRepository struct {
	inner usecase.CatalogRepository
	memo  *Memo
}

var _ usecase.CatalogRepository = (*CachingCatalogRepository)(nil)

// NewCachingCatalogRepository wraps inner. A nil memo disables caching.
func NewCachingCatalogRepository(inner usecase.CatalogRepository, memo *Memo) *CachingCatalogRepository {
	if memo == nil {
		memo = NewMemo(NoopStore{}, nil)
	}
	return &CachingCatalogRepository{inner: inner, memo: memo}
}

func (c *CachingCatalogRepository) ListCourses(ctx context.Context) ([]entity.Course, error) {
	return Fetch(ctx, c.memo, "courses:all", []Tag{Global(KindCourses)}, c.inner.ListCourses)
}

func (c *CachingCatalogRepository) FindCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	key := id.String()
	return Fetch(ctx, c.memo, "courses:id:"+key, []Tag{ByID(KindCourses, key)}, func(ctx context.Context) (*entity.Course, error) {
		return c.inner.FindCourse(ctx, id)
	})
}

func (c *CachingCatalogRepository) CreateCourse(ctx context.Context, course *entity.Course) (*entity.Course, error) {
	out, err := c.inner.CreateCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	c.memo.Invalidate(ctx, EntityTags(KindCourses, out.ID.String())...)
	return out, nil
}

// CreatePurchase also invalidates the buyer's purchase list.
func (c *CachingCatalogRepository) CreatePurchase(ctx context.Context, p *entity.Purchase) (*entity.Purchase, error) {
	out, err := c.inner.CreatePurchase(ctx, p)
	if err != nil {
		return nil, err
	}
	tags := append(EntityTags(KindPurchases, out.ID.String()), ByUser(KindPurchases, out.UserID))
	c.memo.Invalidate(ctx, tags...)
	return out, nil
}

func (c *CachingCatalogRepository) ListPurchasesByUser(ctx context.Context, userID string) ([]entity.Purchase, error) {
	return Fetch(ctx, c.memo, "purchases:user:"+userID, []Tag{ByUser(KindPurchases, userID)}, func(ctx context.Context) ([]entity.Purchase, error) {
		return c.inner.ListPurchasesByUser(ctx, userID)
	})
}
