package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"course_backend/internal/feature/catalog/domain/entity"
)

// CatalogUsecase provides course listing and purchase grants.
type CatalogUsecase struct {
	repo  CatalogRepository
	users UserReader
}

// NewCatalogUsecase creates a new CatalogUsecase.
func NewCatalogUsecase(repo CatalogRepository, users UserReader) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, users: users}
}

// ListCourses returns every course, newest first.
func (u *CatalogUsecase) ListCourses(ctx context.Context) ([]entity.Course, error) {
	return u.repo.ListCourses(ctx)
}

// GetCourse returns a single course.
func (u *CatalogUsecase) GetCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	return u.repo.FindCourse(ctx, id)
}

// CreateCourse validates and stores a new course.
func (u *CatalogUsecase) CreateCourse(ctx context.Context, name, description string, priceInCents int64) (*entity.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if priceInCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	c, err := u.repo.CreateCourse(ctx, &entity.Course{
		Name:         name,
		Description:  strings.TrimSpace(description),
		PriceInCents: priceInCents,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("course created", "course_id", c.ID, "price_in_cents", c.PriceInCents)
	return c, nil
}

// GrantPurchase records that userID bought courseID at the course's current price.
func (u *CatalogUsecase) GrantPurchase(ctx context.Context, userID string, courseID uuid.UUID) (*entity.Purchase, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if courseID == uuid.Nil {
		return nil, fmt.Errorf("%w: course id is required", ErrValidation)
	}

	if _, err := u.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	course, err := u.repo.FindCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	p, err := u.repo.CreatePurchase(ctx, &entity.Purchase{
		UserID:           userID,
		CourseID:         course.ID,
		PricePaidInCents: course.PriceInCents,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("purchase granted", "purchase_id", p.ID, "user_id", userID, "course_id", courseID)
	return p, nil
}

// ListPurchases returns the purchases of a user, newest first.
func (u *CatalogUsecase) ListPurchases(ctx context.Context, userID string) ([]entity.Purchase, error) {
	return u.repo.ListPurchasesByUser(ctx, userID)
}
