package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"course_backend/internal/api"
	"course_backend/internal/feature/user/usecase"
	"course_backend/internal/platform/identity"
)

// StatusFor maps a usecase or identity failure to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecase.ErrUserNotFound), errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrNoSession), errors.Is(err, identity.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes the mapped status. Internal failures are not described to the client.
func abortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := http.StatusText(status)
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}

// syncURL is where a caller without a linked session continues.
func syncURL(c *gin.Context) string {
	return "/sync?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
}
