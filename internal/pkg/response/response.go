// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "visrec-admin/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	StatusMessage string      `json:"statusMessage,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response. The message doubles as statusMessage
// so browser clients can read it the same way for every endpoint.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort before writing so later handlers never run.
	c.Abort()

	response := Response{
		Success:       false,
		Message:       message,
		StatusMessage: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FromError maps a categorized error onto status and message. Only the
// client-safe message is written; the cause stays in the logs.
func FromError(c *gin.Context, err error, fallback string) {
	Error(c, xerrors.HTTPStatus(err), xerrors.MessageOf(err, fallback), nil)
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}
