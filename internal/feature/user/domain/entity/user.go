// Package entity defines the domain entities for the user feature.
package entity

import (
	"time"

	"gorm.io/gorm"
)

// Role is the permission level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a metadata role string to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Values written over personal fields when a user is soft-deleted.
const (
	RedactedName       = "Deleted User"
	RedactedEmail      = "redacted@deleted.invalid"
	RedactedExternalID = "deleted"
)

// User is the relational record of a person known to the identity provider.
// ID is the internal id every other table joins on; ExternalID correlates the
// row with the identity provider's user.
type User struct {
	// ID is generated on insert and never changes.
	ID string `gorm:"primaryKey;size:36"`

	// ExternalID is unique among rows that are not soft-deleted.
	// Soft-deleted rows all share RedactedExternalID.
	ExternalID string `gorm:"size:255;not null;uniqueIndex:idx_users_external_id,where:deleted_at IS NULL"`

	Name     string  `gorm:"size:255;not null"`
	Email    string  `gorm:"size:255;not null"`
	ImageURL *string `gorm:"size:1024"`
	Role     Role    `gorm:"size:16;not null;default:user"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// DeletedAt marks the row as redacted. Rows are never hard-deleted so that
	// purchases and other dependents keep their foreign keys.
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// IsRedacted reports whether the user has been soft-deleted.
func (u *User) IsRedacted() bool {
	return u.DeletedAt.Valid
}

// Patch is a partial update of a user's mutable fields. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Email    *string
	ImageURL *string
	Role     *Role
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.ImageURL == nil && p.Role == nil
}

// Tombstone remembers an external id whose user was soft-deleted, so that a
// later sync for the same identity fails instead of recreating the user.
// Only a SHA-256 digest of the external id is kept.
type Tombstone struct {
	ExternalIDDigest string `gorm:"primaryKey;size:64"`
	CreatedAt        time.Time
}
