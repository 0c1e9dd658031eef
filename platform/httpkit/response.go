package httpkit

import (
	"errors"
	"net/http"

	"leadqualify_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error envelope every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON sends payload with the given status code.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error sends an error envelope.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// OK sends a 200 response.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// HandleError writes err as a response and reports whether there was one.
// The first *apperr.Error in the chain picks the status; anything else is
// a 500 whose text stays in the access log.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	_ = c.Error(err)

	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		Error(c, http.StatusInternalServerError, "internal server error", nil)
		return true
	}

	message := domainErr.Message
	if message == "" {
		message = http.StatusText(domainErr.HTTPStatus())
	}
	Error(c, domainErr.HTTPStatus(), message, domainErr.Details)
	return true
}
