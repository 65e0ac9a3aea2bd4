// Package handler provides the HTTP handlers of the user feature.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"course_backend/internal/api"
	"course_backend/internal/feature/user/domain/entity"
	"course_backend/internal/feature/user/transport/http/dto"
	"course_backend/internal/feature/user/usecase"
	"course_backend/internal/platform/identity"
	jwtmw "course_backend/internal/platform/jwt"
)

// Gin context keys set by RequireRole.
const (
	ContextInternalID = "internalID"
	ContextRole       = "role"
)

// maxWebhookBody bounds the size of a lifecycle notification.
const maxWebhookBody = 1 << 20

// SessionResolver resolves the caller of the current request.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SessionResolver interface {
	Resolve(ctx context.Context, loadUser bool) (*usecase.Resolution, error)
	RequireRole(ctx context.Context, role entity.Role) (*usecase.Resolution, error)
}

// Synchronizer runs the interactive sync and applies lifecycle notifications.
type Synchronizer interface {
	SyncCurrentUser(ctx context.Context, redirectHint string) (*usecase.SyncResult, error)
	HandleEvent(ctx context.Context, evt identity.Event) error
}

// WebhookVerifier authenticates lifecycle notifications.
type WebhookVerifier interface {
	Verify(h http.Header, body []byte) (*identity.Event, error)
}

// DeliveryLog remembers processed webhook deliveries by id.
type DeliveryLog interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

// RejectionRecorder counts rejected notifications.
type RejectionRecorder interface {
	RecordWebhookRejected()
}

// UserHandler serves the session, sync and webhook endpoints.
type UserHandler struct {
	sessions   SessionResolver
	sync       Synchronizer
	verifier   WebhookVerifier
	deliveries DeliveryLog
	rec        RejectionRecorder
}

// NewUserHandler creates a UserHandler. deliveries and rec may be nil.
func NewUserHandler(sessions SessionResolver, sync Synchronizer, verifier WebhookVerifier, deliveries DeliveryLog, rec RejectionRecorder) *UserHandler {
	return &UserHandler{sessions: sessions, sync: sync, verifier: verifier, deliveries: deliveries, rec: rec}
}

// Me returns the caller's resolution with the full user row.
// An unlinked session gets 409 with the sync URL instead.
func (h *UserHandler) Me(c *gin.Context) {
	res, err := h.sessions.Resolve(c.Request.Context(), true)
	if err != nil {
		slog.Warn("session resolution failed", "error", err, "external_id", c.GetString(jwtmw.ContextExternalID))
		abortWithError(c, err)
		return
	}
	if res.NeedsSync() {
		c.JSON(http.StatusConflict, api.SyncRequiredResponse{Error: "sync required", SyncUrl: syncURL(c)})
		return
	}
	c.JSON(http.StatusOK, dto.Session(res))
}

// Sync runs the interactive sync and redirects to the requested local path.
func (h *UserHandler) Sync(c *gin.Context) {
	out, err := h.sync.SyncCurrentUser(c.Request.Context(), c.Query("redirect"))
	if err != nil {
		slog.Warn("interactive sync failed", "error", err, "external_id", c.GetString(jwtmw.ContextExternalID))
		abortWithError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, out.Destination)
}

// Webhook verifies and applies a lifecycle notification.
// Nothing is applied unless the signature verifies.
func (h *UserHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "payload too large"})
		return
	}

	evt, err := h.verifier.Verify(c.Request.Header, body)
	if err != nil {
		if h.rec != nil && errors.Is(err, identity.ErrInvalidSignature) {
			h.rec.RecordWebhookRejected()
		}
		slog.Warn("webhook rejected", "error", err, "remote_addr", c.ClientIP(), "webhook_id", c.GetHeader(identity.HeaderWebhookID))
		status := http.StatusBadRequest
		if errors.Is(err, identity.ErrInvalidSignature) {
			status = http.StatusUnauthorized
		}
		c.AbortWithStatusJSON(status, api.ErrorResponse{Error: "invalid webhook"})
		return
	}

	ctx := c.Request.Context()
	id := c.GetHeader(identity.HeaderWebhookID)
	claimed := false
	if h.deliveries != nil {
		fresh, err := h.deliveries.Claim(ctx, id)
		switch {
		case err != nil:
			// applying twice is safe, upserts by external id converge
			slog.Warn("delivery log unavailable", "error", err, "webhook_id", id)
		case !fresh:
			slog.Info("duplicate webhook delivery", "webhook_id", id, "type", evt.Type)
			c.JSON(http.StatusOK, api.MessageResponse{Message: "duplicate"})
			return
		default:
			claimed = true
		}
	}

	if err := h.sync.HandleEvent(ctx, *evt); err != nil {
		slog.Error("webhook event failed", "error", err, "type", evt.Type, "external_id", evt.Data.ID)
		if claimed {
			// let the provider's retry apply it
			if rerr := h.deliveries.Release(ctx, id); rerr != nil {
				slog.Warn("failed to release webhook delivery", "error", rerr, "webhook_id", id)
			}
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}

// RequireRole admits linked callers holding role and stores their internal
// id and role on the gin context. Unlinked callers get 409 with the sync URL.
func (h *UserHandler) RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := h.sessions.RequireRole(c.Request.Context(), role)
		if err != nil {
			if errors.Is(err, usecase.ErrForbidden) {
				slog.Warn("permission denied", "required_role", role, "external_id", c.GetString(jwtmw.ContextExternalID))
			}
			abortWithError(c, err)
			return
		}
		if res.NeedsSync() {
			c.AbortWithStatusJSON(http.StatusConflict, api.SyncRequiredResponse{Error: "sync required", SyncUrl: syncURL(c)})
			return
		}
		c.Set(ContextInternalID, res.InternalID)
		c.Set(ContextRole, string(res.Role))
		c.Next()
	}
}
