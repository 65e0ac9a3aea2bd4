// Package handler provides the HTTP handlers of the catalog feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"course_backend/internal/api"
	"course_backend/internal/feature/catalog/domain/entity"
	"course_backend/internal/feature/catalog/transport/http/dto"
	"course_backend/internal/feature/catalog/usecase"
	userhandler "course_backend/internal/feature/user/transport/handler"
	userusecase "course_backend/internal/feature/user/usecase"
)

// CatalogUsecase defines the catalog operations the handler needs.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type CatalogUsecase interface {
	ListCourses(ctx context.Context) ([]entity.Course, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	CreateCourse(ctx context.Context, name, description string, priceInCents int64) (*entity.Course, error)
	GrantPurchase(ctx context.Context, userID string, courseID uuid.UUID) (*entity.Purchase, error)
	ListPurchases(ctx context.Context, userID string) ([]entity.Purchase, error)
}

// CatalogHandler serves courses and purchases.
type CatalogHandler struct {
	uc CatalogUsecase
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(uc CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListCourses handles GET /courses.
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.uc.ListCourses(c.Request.Context())
	if err != nil {
		h.fail(c, "list courses", err)
		return
	}
	c.JSON(http.StatusOK, dto.Courses(courses))
}

// GetCourse handles GET /courses/:id.
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid course id"})
		return
	}
	course, err := h.uc.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "get course", err)
		return
	}
	c.JSON(http.StatusOK, dto.Course(course))
}

// MyPurchases handles GET /me/purchases. It must run behind RequireRole.
func (h *CatalogHandler) MyPurchases(c *gin.Context) {
	userID := c.GetString(userhandler.ContextInternalID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}
	purchases, err := h.uc.ListPurchases(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "list purchases", err)
		return
	}
	c.JSON(http.StatusOK, dto.Purchases(purchases))
}

// CreateCourse handles POST /admin/courses.
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req api.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	course, err := h.uc.CreateCourse(c.Request.Context(), req.Name, req.Description, req.PriceInCents)
	if err != nil {
		h.fail(c, "create course", err)
		return
	}
	c.JSON(http.StatusCreated, dto.Course(course))
}

// GrantPurchase handles POST /admin/purchases.
func (h *CatalogHandler) GrantPurchase(c *gin.Context) {
	var req api.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	p, err := h.uc.GrantPurchase(c.Request.Context(), req.UserId, req.CourseId)
	if err != nil {
		h.fail(c, "grant purchase", err)
		return
	}
	c.JSON(http.StatusCreated, dto.Purchase(p))
}

func (h *CatalogHandler) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("catalog request failed", "op", op, "error", err)
		c.JSON(status, api.ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrCourseNotFound), errors.Is(err, userusecase.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAlreadyPurchased):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
