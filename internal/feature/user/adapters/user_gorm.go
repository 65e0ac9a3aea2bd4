// Package adapters provides the repository implementations for the user feature.
package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/feature/user/usecase"
)

// userGorm is the GORM implementation of usecase.UserRepository.
type userGorm struct {
	db *gorm.DB
}

// Compile-time check that userGorm implements UserRepository.
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm creates a userGorm over the given connection.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Models lists the tables this adapter needs migrated.
func Models() []any {
	return []any{&entity.User{}, &entity.Tombstone{}}
}

// UpsertByExternalID inserts u or, on an external id conflict with a live row,
// overwrites that row's mutable fields. The internal id of an existing row is kept.
func (r *userGorm) UpsertByExternalID(ctx context.Context, u *entity.User) (*entity.User, error) {
	if u == nil || u.ExternalID == "" || u.Name == "" || u.Email == "" || u.Role == "" {
		return nil, fmt.Errorf("%w: upsert requires external id, name, email and role", usecase.ErrValidation)
	}

	var out entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		row := entity.User{
			ID:         uuid.NewString(),
			ExternalID: u.ExternalID,
			Name:       u.Name,
			Email:      u.Email,
			ImageURL:   u.ImageURL,
			Role:       u.Role,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "external_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "deleted_at IS NULL"}}},
			DoUpdates:   clause.AssignmentColumns([]string{"name", "email", "image_url", "role", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		// A redacted identity stays redacted. The check runs after the write:
		// a soft-delete committing concurrently either shows its tombstone here
		// or waits on the row lock this transaction now holds.
		var n int64
		if err := tx.Model(&entity.Tombstone{}).
			Where("external_id_digest = ?", digest(u.ExternalID)).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return usecase.ErrUserNotFound
		}

		return tx.Where("external_id = ?", u.ExternalID).Take(&out).Error
	})
	if err != nil {
		return nil, repositoryError("upsert user", err)
	}
	return &out, nil
}

// UpdateByExternalID applies patch to the live row with the external id.
func (r *userGorm) UpdateByExternalID(ctx context.Context, externalID string, patch entity.Patch) (*entity.User, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}

	out, err := r.mutate(ctx, externalID, updates)
	if err != nil {
		return nil, repositoryError("update user", err)
	}
	return out, nil
}

// SoftDeleteByExternalID redacts the live row with the external id and
// records a tombstone for the identity. There is no way back.
func (r *userGorm) SoftDeleteByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	now := time.Now()
	updates := map[string]any{
		"name":        entity.RedactedName,
		"email":       entity.RedactedEmail,
		"external_id": entity.RedactedExternalID,
		"image_url":   nil,
		"deleted_at":  now,
		"updated_at":  now,
	}

	out, err := r.mutate(ctx, externalID, updates, func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&entity.Tombstone{ExternalIDDigest: digest(externalID), CreatedAt: now}).Error
	})
	if err != nil {
		return nil, repositoryError("soft-delete user", err)
	}
	return out, nil
}

// FindByID retrieves a live user by internal id.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByExternalID retrieves a live user by external id.
func (r *userGorm) FindByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// mutate applies updates to the live row with externalID inside a transaction,
// runs extra in the same transaction and returns the row as written.
func (r *userGorm) mutate(ctx context.Context, externalID string, updates map[string]any, extra ...func(tx *gorm.DB) error) (*entity.User, error) {
	var out entity.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur entity.User
		if err := tx.Where("external_id = ?", externalID).Take(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrUserNotFound
			}
			return err
		}

		res := tx.Model(&entity.User{}).Where("id = ?", cur.ID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}

		for _, fn := range extra {
			if err := fn(tx); err != nil {
				return err
			}
		}
		return tx.Unscoped().Where("id = ?", cur.ID).Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// repositoryError passes typed failures through and marks everything else as ErrRepository.
func repositoryError(op string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, usecase.ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s returned no row", usecase.ErrRepository, op)
	default:
		return fmt.Errorf("%w: %s: %w", usecase.ErrRepository, op, err)
	}
}

func digest(externalID string) string {
	sum := sha256.Sum256([]byte(externalID))
	return hex.EncodeToString(sum[:])
}
