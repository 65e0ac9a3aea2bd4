package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/feature/user/usecase"
)

// setupTestDB prepares an in-memory SQLite database for user testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// every pooled connection would get its own :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...), "failed to migrate tables")
	return db
}

func newUser(externalID, name, email string) *entity.User {
	return &entity.User{ExternalID: externalID, Name: name, Email: email, Role: entity.RoleUser}
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_UpsertByExternalID(t *testing.T) {
	t.Parallel()

	t.Run("success: insert assigns an internal id", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))

		got, err := repo.UpsertByExternalID(context.Background(), newUser("ext_1", "Ada Lovelace", "ada@example.com"))

		require.NoError(t, err)
		assert.Len(t, got.ID, 36)
		assert.Equal(t, "ext_1", got.ExternalID)
		assert.Equal(t, "Ada Lovelace", got.Name)
		assert.Equal(t, entity.RoleUser, got.Role)
		assert.False(t, got.CreatedAt.IsZero())
		assert.False(t, got.IsRedacted())
	})

	t.Run("success: repeated upsert keeps the id and overwrites fields", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		ctx := context.Background()

		first, err := repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		img := "https://img.example.com/ada.png"
		second, err := repo.UpsertByExternalID(ctx, &entity.User{
			ExternalID: "ext_1", Name: "Ada Lovelace", Email: "ada@lovelace.org", ImageURL: &img, Role: entity.RoleAdmin,
		})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Ada Lovelace", second.Name)
		assert.Equal(t, "ada@lovelace.org", second.Email)
		require.NotNil(t, second.ImageURL)
		assert.Equal(t, img, *second.ImageURL)
		assert.Equal(t, entity.RoleAdmin, second.Role)
		assert.WithinDuration(t, first.CreatedAt, second.CreatedAt, time.Millisecond)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at should advance")
	})

	t.Run("error: missing required fields", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))

		_, err := repo.UpsertByExternalID(context.Background(), newUser("ext_1", "Ada", ""))

		assert.ErrorIs(t, err, usecase.ErrValidation)
	})

	t.Run("error: redacted identity is not recreated", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		ctx := context.Background()

		_, err := repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))
		require.NoError(t, err)
		_, err = repo.SoftDeleteByExternalID(ctx, "ext_1")
		require.NoError(t, err)

		_, err = repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_UpsertByExternalID_Concurrent(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()

	const n = 8
	written := make(map[string]bool, n)
	results := make([]*entity.User, n)
	var wg sync.WaitGroup
	for i := range n {
		name := fmt.Sprintf("name-%d", i)
		written[name] = true
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := repo.UpsertByExternalID(ctx, newUser("ext_race", name, "race@example.com"))
			if assert.NoError(t, err) {
				results[i] = u
			}
		}(i)
	}
	wg.Wait()

	var last *entity.User
	for _, u := range results {
		require.NotNil(t, u)
		assert.Equal(t, results[0].ID, u.ID, "all upserts should converge on one row")
		if last == nil || u.UpdatedAt.After(last.UpdatedAt) {
			last = u
		}
	}

	var rows []entity.User
	require.NoError(t, repo.db.Where("external_id = ?", "ext_race").Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, written[rows[0].Name], "surviving name %q must be one of the written values", rows[0].Name)
	assert.Equal(t, last.Name, rows[0].Name, "the last committed write wins")
}

func TestUserGorm_UpsertByExternalID_RedactionLandsDuringUpsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)
	ctx := context.Background()

	// A soft-delete for the identity commits right before the upsert's insert.
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_redaction", func(tx *gorm.DB) {
		if tx.Statement.Table != "users" {
			return
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO tombstones (external_id_digest, created_at) VALUES (?, ?)", digest("ext_gone"), time.Now()).Error; err != nil {
			_ = tx.AddError(err)
		}
	}))

	_, err := repo.UpsertByExternalID(ctx, newUser("ext_gone", "Ada", "ada@example.com"))

	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	var live int64
	require.NoError(t, db.Model(&entity.User{}).Where("external_id = ?", "ext_gone").Count(&live).Error)
	assert.Zero(t, live, "no live row may exist for a redacted identity")
}

func TestUserGorm_UpdateByExternalID(t *testing.T) {
	t.Parallel()

	t.Run("success: only patched fields change", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		ctx := context.Background()
		orig, err := repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))
		require.NoError(t, err)

		name := "Countess of Lovelace"
		role := entity.RoleAdmin
		got, err := repo.UpdateByExternalID(ctx, "ext_1", entity.Patch{Name: &name, Role: &role})

		require.NoError(t, err)
		assert.Equal(t, orig.ID, got.ID)
		assert.Equal(t, name, got.Name)
		assert.Equal(t, "ada@example.com", got.Email)
		assert.Equal(t, entity.RoleAdmin, got.Role)
	})

	t.Run("error: unknown external id", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		name := "x"

		_, err := repo.UpdateByExternalID(context.Background(), "missing", entity.Patch{Name: &name})

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_SoftDeleteByExternalID(t *testing.T) {
	t.Parallel()

	t.Run("success: personal fields are redacted", func(t *testing.T) {
		t.Parallel()
		db := setupTestDB(t)
		repo := NewUserGorm(db)
		ctx := context.Background()
		img := "https://img.example.com/ada.png"
		orig, err := repo.UpsertByExternalID(ctx, &entity.User{
			ExternalID: "ext_1", Name: "Ada", Email: "ada@example.com", ImageURL: &img, Role: entity.RoleUser,
		})
		require.NoError(t, err)

		got, err := repo.SoftDeleteByExternalID(ctx, "ext_1")

		require.NoError(t, err)
		assert.Equal(t, orig.ID, got.ID)
		assert.Equal(t, entity.RedactedName, got.Name)
		assert.Equal(t, entity.RedactedEmail, got.Email)
		assert.Equal(t, entity.RedactedExternalID, got.ExternalID)
		assert.Nil(t, got.ImageURL)
		assert.True(t, got.IsRedacted())

		_, err = repo.FindByID(ctx, orig.ID)
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)

		var raw entity.User
		require.NoError(t, db.Unscoped().Where("id = ?", orig.ID).Take(&raw).Error)
		assert.Equal(t, entity.RedactedEmail, raw.Email, "row must be kept for dependents")
	})

	t.Run("success: several redacted rows coexist", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		ctx := context.Background()

		for _, ext := range []string{"ext_1", "ext_2"} {
			_, err := repo.UpsertByExternalID(ctx, newUser(ext, "User", ext+"@example.com"))
			require.NoError(t, err)
			_, err = repo.SoftDeleteByExternalID(ctx, ext)
			require.NoError(t, err)
		}
	})

	t.Run("error: a redacted user cannot be updated or deleted again", func(t *testing.T) {
		t.Parallel()
		repo := NewUserGorm(setupTestDB(t))
		ctx := context.Background()
		_, err := repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))
		require.NoError(t, err)
		_, err = repo.SoftDeleteByExternalID(ctx, "ext_1")
		require.NoError(t, err)

		name := "Back"
		_, err = repo.UpdateByExternalID(ctx, "ext_1", entity.Patch{Name: &name})
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)

		_, err = repo.SoftDeleteByExternalID(ctx, "ext_1")
		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})
}

func TestUserGorm_Find(t *testing.T) {
	t.Parallel()
	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	u, err := repo.UpsertByExternalID(ctx, newUser("ext_1", "Ada", "ada@example.com"))
	require.NoError(t, err)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ext_1", byID.ExternalID)

	byExt, err := repo.FindByExternalID(ctx, "ext_1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byExt.ID)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	_, err = repo.FindByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, usecase.ErrUserNotFound)
}

func TestRepositoryError(t *testing.T) {
	err := repositoryError("op", fmt.Errorf("boom"))
	assert.ErrorIs(t, err, usecase.ErrRepository)
	assert.Contains(t, err.Error(), "boom")

	assert.ErrorIs(t, repositoryError("op", gorm.ErrRecordNotFound), usecase.ErrRepository)
	assert.Equal(t, usecase.ErrUserNotFound, repositoryError("op", usecase.ErrUserNotFound))
}
