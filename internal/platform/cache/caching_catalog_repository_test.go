package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course_backend/internal/feature/catalog/domain/entity"
	"course_backend/internal/feature/catalog/usecase"
)

// fakeCatalogRepository is an in-memory CatalogRepository that counts reads per method.
type fakeCatalogRepository struct {
	mu        sync.Mutex
	courses   []entity.Course
	purchases []entity.Purchase
	reads     map[string]int
}

func newFakeCatalogRepository() *fakeCatalogRepository {
	return &fakeCatalogRepository{reads: make(map[string]int)}
}

func (f *fakeCatalogRepository) ListCourses(context.Context) ([]entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads["list"]++
	return append([]entity.Course(nil), f.courses...), nil
}

func (f *fakeCatalogRepository) FindCourse(_ context.Context, id uuid.UUID) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads["find"]++
	for _, c := range f.courses {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, usecase.ErrCourseNotFound
}

func (f *fakeCatalogRepository) CreateCourse(_ context.Context, c *entity.Course) (*entity.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	f.courses = append(f.courses, cp)
	return &cp, nil
}

func (f *fakeCatalogRepository) CreatePurchase(_ context.Context, p *entity.Purchase) (*entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, cur := range f.purchases {
		if cur.UserID == p.UserID && cur.CourseID == p.CourseID {
			return nil, usecase.ErrAlreadyPurchased
		}
	}
	cp := *p
	cp.ID = uuid.New()
	f.purchases = append(f.purchases, cp)
	return &cp, nil
}

func (f *fakeCatalogRepository) ListPurchasesByUser(_ context.Context, userID string) ([]entity.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads["purchases:"+userID]++
	var out []entity.Purchase
	for _, p := range f.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepository) readCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[op]
}

func newCachedCatalog(t *testing.T) (*CachingCatalogRepository, *fakeCatalogRepository) {
	t.Helper()
	inner := newFakeCatalogRepository()
	return NewCachingCatalogRepository(inner, NewMemo(NewMemoryStore(time.Minute), nil)), inner
}

func TestCachingCatalogRepository_ListCourses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner := newCachedCatalog(t)

	_, err := repo.CreateCourse(ctx, &entity.Course{Name: "Go Basics", PriceInCents: 1999})
	require.NoError(t, err)

	for range 3 {
		got, err := repo.ListCourses(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, inner.readCount("list"))

	_, err = repo.CreateCourse(ctx, &entity.Course{Name: "Advanced Go", PriceInCents: 4999})
	require.NoError(t, err)

	got, err := repo.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2, "new course must be visible after creation")
	assert.Equal(t, 2, inner.readCount("list"))
}

func TestCachingCatalogRepository_FindCourse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner := newCachedCatalog(t)

	c, err := repo.CreateCourse(ctx, &entity.Course{Name: "Go Basics", PriceInCents: 1999})
	require.NoError(t, err)

	for range 2 {
		got, err := repo.FindCourse(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, got.ID)
		assert.Equal(t, "Go Basics", got.Name)
	}
	assert.Equal(t, 1, inner.readCount("find"))

	_, err = repo.FindCourse(ctx, uuid.New())
	assert.ErrorIs(t, err, usecase.ErrCourseNotFound)
}

func TestCachingCatalogRepository_CreatePurchaseInvalidatesBuyer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner := newCachedCatalog(t)

	c1, err := repo.CreateCourse(ctx, &entity.Course{Name: "One"})
	require.NoError(t, err)
	c2, err := repo.CreateCourse(ctx, &entity.Course{Name: "Two"})
	require.NoError(t, err)

	_, err = repo.CreatePurchase(ctx, &entity.Purchase{UserID: "u1", CourseID: c1.ID})
	require.NoError(t, err)

	// warm both users' lists
	for _, uid := range []string{"u1", "u2"} {
		_, err := repo.ListPurchasesByUser(ctx, uid)
		require.NoError(t, err)
	}

	_, err = repo.CreatePurchase(ctx, &entity.Purchase{UserID: "u1", CourseID: c2.ID})
	require.NoError(t, err)

	got, err := repo.ListPurchasesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 2, inner.readCount("purchases:u1"))

	_, err = repo.ListPurchasesByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.readCount("purchases:u2"), "other users' lists stay cached")
}

func TestCachingCatalogRepository_FailedPurchaseKeepsCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, inner := newCachedCatalog(t)

	c, err := repo.CreateCourse(ctx, &entity.Course{Name: "One"})
	require.NoError(t, err)
	_, err = repo.CreatePurchase(ctx, &entity.Purchase{UserID: "u1", CourseID: c.ID})
	require.NoError(t, err)
	_, err = repo.ListPurchasesByUser(ctx, "u1")
	require.NoError(t, err)

	_, err = repo.CreatePurchase(ctx, &entity.Purchase{UserID: "u1", CourseID: c.ID})
	require.ErrorIs(t, err, usecase.ErrAlreadyPurchased)

	_, err = repo.ListPurchasesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.readCount("purchases:u1"))
}

func TestCachingCatalogRepository_PurchaseTags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	memo := NewMemo(store, nil)
	repo := NewCachingCatalogRepository(newFakeCatalogRepository(), memo)

	// entries stored under each tag a purchase must clear
	for i, tag := range []Tag{Global(KindPurchases), ByUser(KindPurchases, "u9")} {
		require.NoError(t, store.Set(ctx, fmt.Sprintf("probe:%d", i), []byte(`1`), []Tag{tag}))
	}

	_, err := repo.CreatePurchase(ctx, &entity.Purchase{UserID: "u9", CourseID: uuid.New()})
	require.NoError(t, err)

	for i := range 2 {
		_, ok, err := store.Get(ctx, fmt.Sprintf("probe:%d", i))
		require.NoError(t, err)
		assert.False(t, ok, "probe:%d should be invalidated", i)
	}
}
