package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"colognehub/internal/apiclient"
	"colognehub/internal/domain"
	"colognehub/internal/service/auth"
	"colognehub/internal/service/cart"
	"colognehub/internal/service/checkout"
	"colognehub/internal/service/order"
	"colognehub/internal/validation"
)

// writeError maps service errors to a JSON {"message": ...} response.
func writeError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	if fields, ok := validation.Fields(err); ok {
		return http.StatusUnprocessableEntity, gin.H{"message": fields.Error(), "fields": fields}
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, cart.ErrExceedsStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidPromo),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, order.ErrUnknownStatus):
		return http.StatusUnprocessableEntity, gin.H{"message": trimSentinel(err, domain.ErrValidation)}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"message": trimSentinel(err, auth.ErrInvalidCredentials)}
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict, gin.H{"message": err.Error()}
	case errors.Is(err, context.Canceled):
		return http.StatusConflict, gin.H{"message": "request superseded"}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		return status, gin.H{"message": apiErr.Message}
	}
	if errors.Is(err, domain.ErrNotFound) {
		return http.StatusNotFound, gin.H{"message": "not found"}
	}
	return http.StatusInternalServerError, gin.H{"message": "internal error"}
}

// trimSentinel drops a leading "<sentinel>: " so the user sees the detail.
func trimSentinel(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}
