package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details string   `json:"details,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

// ErrorHandler is a middleware that catches panics and returns a
// structured error instead of tearing the connection down.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err))
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response.
func JSONError(c *gin.Context, status int, message string, details string) {
	GetLogger().Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// JSONConflict sends a conflict response carrying the engine's reasons.
func JSONConflict(c *gin.Context, status int, message string, reasons []string) {
	GetLogger().Info(message, zap.Strings("reasons", reasons))
	c.JSON(status, ErrorResponse{Message: message, Reasons: reasons})
}
