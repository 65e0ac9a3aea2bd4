// Package adapters provides gorm implementations of the catalog repository.
package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"course_backend/internal/feature/catalog/domain/entity"
	"course_backend/internal/feature/catalog/usecase"
)

type catalogGorm struct {
	db *gorm.DB
}

var _ usecase.CatalogRepository = (*catalogGorm)(nil)

// NewCatalogGorm creates a catalog repository. The database must be opened
// with TranslateError so that duplicate purchases surface as gorm.ErrDuplicatedKey.
func NewCatalogGorm(db *gorm.DB) *catalogGorm {
	return &catalogGorm{db: db}
}

// Models lists the tables this repository needs migrated.
func Models() []any {
	return []any{&entity.Course{}, &entity.Purchase{}}
}

func (r *catalogGorm) ListCourses(ctx context.Context) ([]entity.Course, error) {
	var courses []entity.Course
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id").
		Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *catalogGorm) FindCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var c entity.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", usecase.ErrCourseNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

func (r *catalogGorm) CreateCourse(ctx context.Context, c *entity.Course) (*entity.Course, error) {
	row := *c
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return &row, nil
}

func (r *catalogGorm) CreatePurchase(ctx context.Context, p *entity.Purchase) (*entity.Purchase, error) {
	row := *p
	row.User, row.Course = nil, nil
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: user %s course %s", usecase.ErrAlreadyPurchased, row.UserID, row.CourseID)
	}
	if err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	return &row, nil
}

func (r *catalogGorm) ListPurchasesByUser(ctx context.Context, userID string) ([]entity.Purchase, error) {
	var purchases []entity.Purchase
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&purchases).Error; err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}
