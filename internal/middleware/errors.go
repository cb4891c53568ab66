package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/k4bridge/internal/domain/dto"
	"github.com/guttosm/k4bridge/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a JSON error response
// when the handler did not write one itself.
//
// Behavior:
//   - Runs after the rest of the chain.
//   - Uses the status already set when it is an error status, 500 otherwise.
//   - Logs the last error with the request id.
//
// Example:
//
//	router := gin.New()
//	router.Use(middleware.ErrorHandler)
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	err := c.Errors.Last().Err
	rid, _ := c.Get(RequestIDKey)

	logger.L().Error().
		Err(err).
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if c.Writer.Written() {
		return
	}

	status := c.Writer.Status()
	if status < http.StatusBadRequest {
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.NewErrorResponse(http.StatusText(status), err))
}

// AbortWithError stops the chain and writes a standardized JSON error.
//
// Parameters:
//   - status: HTTP status code to send.
//   - message: client-facing summary.
//   - err: underlying cause, exposed as error details; may be nil.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
