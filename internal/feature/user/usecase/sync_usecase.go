package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/platform/identity"
)

const (
	// defaultDisplayName is used when the identity carries no name at all.
	defaultDisplayName = "New User"

	flowInteractive = "interactive"
	flowWebhook     = "webhook"
)

// SyncResult is the outcome of an interactive sync.
type SyncResult struct {
	User *entity.User
	// Destination is where the caller should continue.
	Destination string
}

// SyncUsecase reconciles the identity provider with the relational store.
//
// The relational store is authoritative. The provider's metadata is a
// best-effort mirror written only after the relational write succeeded; if
// that write-back fails, re-running the sync repairs it because upserts by
// external id converge.
type SyncUsecase struct {
	users           UserRepository
	idp             IdentityProvider
	defaultRedirect string
	rec             SyncRecorder
}

// NewSyncUsecase creates a SyncUsecase. If defaultRedirect is empty, "/" is used.
func NewSyncUsecase(users UserRepository, idp IdentityProvider, defaultRedirect string, rec SyncRecorder) *SyncUsecase {
	if defaultRedirect == "" {
		defaultRedirect = "/"
	}
	if rec == nil {
		rec = nopSyncRecorder{}
	}
	return &SyncUsecase{
		users:           users,
		idp:             idp,
		defaultRedirect: defaultRedirect,
		rec:             rec,
	}
}

// SyncCurrentUser links the caller's external identity to an internal user:
// upsert from the full profile, then write internal id and role back to the
// provider's metadata. redirectHint is honored when it is a local path.
func (u *SyncUsecase) SyncCurrentUser(ctx context.Context, redirectHint string) (*SyncResult, error) {
	profile, err := u.idp.CurrentProfile(ctx)
	if err != nil {
		u.rec.RecordSync(flowInteractive, "error")
		return nil, fmt.Errorf("failed to fetch identity profile: %w", err)
	}

	user, err := u.link(ctx, profile)
	if err != nil {
		u.rec.RecordSync(flowInteractive, outcome(err))
		return nil, err
	}

	u.rec.RecordSync(flowInteractive, "ok")
	slog.Info("user synced", "external_id", user.ExternalID, "user_id", user.ID)
	return &SyncResult{User: user, Destination: u.destination(redirectHint)}, nil
}

// HandleEvent applies a verified lifecycle notification.
// Unknown event types are ignored.
func (u *SyncUsecase) HandleEvent(ctx context.Context, evt identity.Event) error {
	var err error
	switch evt.Type {
	case identity.EventUserCreated, identity.EventUserUpdated:
		profile := evt.Data.Profile()
		_, err = u.link(ctx, &profile)
	case identity.EventUserDeleted:
		if evt.Data.ID == "" {
			err = fmt.Errorf("%w: deletion event without user id", ErrValidation)
			break
		}
		var user *entity.User
		user, err = u.users.SoftDeleteByExternalID(ctx, evt.Data.ID)
		if err == nil {
			slog.Info("user redacted", "user_id", user.ID)
		}
	default:
		slog.Info("ignoring identity event", "type", evt.Type)
		return nil
	}

	u.rec.RecordSync(flowWebhook, outcome(err))
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", evt.Type, err)
	}
	return nil
}

// link upserts the user described by profile and mirrors the result into the
// provider's metadata. Nothing is written back unless the upsert succeeded.
func (u *SyncUsecase) link(ctx context.Context, profile *identity.Profile) (*entity.User, error) {
	record, err := userFromProfile(profile)
	if err != nil {
		return nil, err
	}

	user, err := u.users.UpsertByExternalID(ctx, record)
	if err != nil {
		return nil, err
	}

	md := identity.Metadata{InternalID: user.ID, Role: string(user.Role)}
	if err := u.idp.UpdateMetadata(ctx, user.ExternalID, md); err != nil {
		slog.Warn("metadata write-back failed", "external_id", user.ExternalID, "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("failed to write identity metadata: %w", err)
	}
	return user, nil
}

// userFromProfile derives the relational record from a provider profile.
func userFromProfile(p *identity.Profile) (*entity.User, error) {
	if p.ExternalID == "" {
		return nil, fmt.Errorf("%w: identity has no id", ErrValidation)
	}
	email := strings.TrimSpace(p.PrimaryEmail)
	if email == "" {
		return nil, fmt.Errorf("%w: identity %s has no email address", ErrValidation, p.ExternalID)
	}

	u := &entity.User{
		ExternalID: p.ExternalID,
		Name:       p.DisplayName(defaultDisplayName),
		Email:      email,
		Role:       entity.ParseRole(p.Metadata.Role),
	}
	if p.ImageURL != "" {
		img := p.ImageURL
		u.ImageURL = &img
	}
	return u, nil
}

// destination returns hint when it is a path on this site, otherwise the default.
func (u *SyncUsecase) destination(hint string) string {
	if hint == "" || !strings.HasPrefix(hint, "/") || strings.HasPrefix(hint, "//") || strings.Contains(hint, `\`) {
		return u.defaultRedirect
	}
	parsed, err := url.Parse(hint)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return u.defaultRedirect
	}
	return hint
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}
