package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/storefront/internal/integrity"
	"gorm.io/gorm"
)

type errorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func newValidationError(field, code, message string) error {
	return fmt.Errorf("%w: %s", integrity.Validationf(field, code), message)
}

// mapError translates service failures onto HTTP statuses and stable kinds.
func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, integrity.ErrValidation):
		return http.StatusBadRequest, errorPayload{Kind: "validation", Message: err.Error()}
	case errors.Is(err, integrity.ErrReferentialIntegrity):
		return http.StatusBadRequest, errorPayload{Kind: "referential_integrity", Message: err.Error()}
	case errors.Is(err, integrity.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{Kind: "not_found", Message: err.Error()}
	case errors.Is(err, integrity.ErrProtectedReference):
		return http.StatusConflict, errorPayload{Kind: "protected_reference", Message: err.Error()}
	case errors.Is(err, integrity.ErrUniquenessViolation):
		return http.StatusConflict, errorPayload{Kind: "uniqueness_violation", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{Kind: "internal", Message: "internal server error"}
	}
}

// AbortWithError finishes the request with the mapped status for err.
func AbortWithError(c *gin.Context, err error) {
	status, payload := mapError(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: payload})
}

// ErrorHandlingMiddleware maps errors attached via c.Error by handlers that
// did not write a response themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		status, payload := mapError(c.Errors.Last().Err)
		c.JSON(status, errorResponse{Error: payload})
	}
}
