package middleware

import (
	"errors"
	"net/http"

	"resume-management-backend/internal/delivery/http/response"
	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			// Causes stay in the logs; clients only see the message
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"request_id", c.GetString(string(domain.KeyRequestID)),
					"path", c.FullPath(),
					"kind", appErr.Kind,
					"error", appErr.Error(),
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Kind)
			return
		}

		logger.Log.Error("Internal Server Error", "request_id", c.GetString(string(domain.KeyRequestID)), "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
