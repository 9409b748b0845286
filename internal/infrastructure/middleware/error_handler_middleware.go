package middleware

import (
	"net/http"

	"streamdash/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware turns errors attached via c.Error into JSON
// responses. withSuccessFlag selects the envelope: channel and analytics
// routes report {success:false, error}, user and auth routes report {error}.
func ErrorHandlerMiddleware(logger *zap.SugaredLogger, withSuccessFlag bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "Internal server error"

		if appErr := errors.GetAppError(err); appErr != nil {
			status = appErr.HTTPStatus
			message = appErr.Message

			logger.Errorw("Request failed",
				"code", appErr.Code,
				"status", status,
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", appErr.Error(),
			)

			body := gin.H{"error": message}
			if withSuccessFlag {
				body["success"] = false
			}
			if len(appErr.Fields) > 0 {
				body["details"] = appErr.Fields
			}
			c.JSON(status, body)
			return
		}

		logger.Errorw("Unhandled error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)

		body := gin.H{"error": message}
		if withSuccessFlag {
			body["success"] = false
		}
		c.JSON(status, body)
	}
}

// RecoveryMiddleware recovers panics into 500 responses.
func RecoveryMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("Panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()

		c.Next()
	}
}
