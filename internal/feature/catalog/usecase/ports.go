package usecase

import (
	"context"

	"github.com/google/uuid"

	"course_backend/internal/feature/catalog/domain/entity"
	userentity "course_backend/internal/feature/user/domain/entity"
)

// CatalogRepository abstracts the persistence layer for courses and purchases.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type CatalogRepository interface {
	ListCourses(ctx context.Context) ([]entity.Course, error)

	// FindCourse returns ErrCourseNotFound if no course has the id.
	FindCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error)

	CreateCourse(ctx context.Context, c *entity.Course) (*entity.Course, error)

	// CreatePurchase returns ErrAlreadyPurchased if the user already holds the course.
	CreatePurchase(ctx context.Context, p *entity.Purchase) (*entity.Purchase, error)

	ListPurchasesByUser(ctx context.Context, userID string) ([]entity.Purchase, error)
}

// UserReader checks that a purchase's user exists and is not redacted.
type UserReader interface {
	FindByID(ctx context.Context, id string) (*userentity.User, error)
}
