// Package response maps service results and the domain error taxonomy onto
// HTTP responses, so callers can tell "fix your input" from "try again later"
// from "not allowed".
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hostelhub/service-booking/internal/domain"
)

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 with items and pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"meta": gin.H{"total": total, "page": page, "limit": limit},
	})
}

// BadRequest writes a 400 with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "kind": "validation"})
}

// Error maps a domain error to its HTTP status and message class.
func Error(c *gin.Context, err error) {
	var (
		validationErr   *domain.ValidationError
		invalidStateErr *domain.InvalidStateError
		authErr         *domain.AuthorizationError
		preconditionErr *domain.PreconditionError
		noCapacityErr   *domain.NoCapacityError
		notFoundErr     *domain.NotFoundError
		conflictErr     *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "kind": "validation"})
	case errors.As(err, &invalidStateErr):
		c.JSON(http.StatusConflict, gin.H{"error": invalidStateErr.Error(), "kind": "invalid_state"})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error(), "kind": "authorization"})
	case errors.As(err, &preconditionErr):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": preconditionErr.Error(), "kind": "precondition"})
	case errors.As(err, &noCapacityErr):
		// Recoverable: the owner retries manual allocation later.
		c.JSON(http.StatusConflict, gin.H{"error": noCapacityErr.Error(), "kind": "no_capacity"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error(), "kind": "not_found"})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error(), "kind": "conflict"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "kind": "internal"})
	}
}
