package http

import (
	"errors"
	"log"
	"net/http"

	"delivery-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError writes the {message, error} body for err. fallback is the
// message used for unexpected failures.
func respondError(c *gin.Context, err error, fallback string) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		message = fallback
		log.Printf("%s %s: %s: %v", c.Request.Method, c.FullPath(), fallback, err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Message: message, Error: err.Error()})
}

func classify(err error) (int, string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, "internal error"
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request", Error: err.Error()})
}
