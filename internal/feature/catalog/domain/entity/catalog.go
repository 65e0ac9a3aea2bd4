// Package entity defines the domain entities for the catalog feature.
package entity

import (
	"time"

	"github.com/google/uuid"

	userentity "course_backend/internal/feature/user/domain/entity"
)

// Course is a purchasable course.
type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"size:255;not null"`
	Description  string    `gorm:"type:text;not null;default:''"`
	PriceInCents int64     `gorm:"not null;check:price_in_cents >= 0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Purchase grants a user access to a course at the price paid.
// A user holds at most one purchase per course.
type Purchase struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	UserID string           `gorm:"size:36;not null;uniqueIndex:idx_purchases_user_course,priority:1"`
	User   *userentity.User `gorm:"constraint:OnDelete:RESTRICT" json:"-"`

	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_purchases_user_course,priority:2;index"`
	Course   *Course   `gorm:"constraint:OnDelete:RESTRICT" json:"-"`

	PricePaidInCents int64 `gorm:"not null"`
	CreatedAt        time.Time
}
