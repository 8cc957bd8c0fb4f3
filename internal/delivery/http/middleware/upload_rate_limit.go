package middleware

import (
	"net/http"
	"strconv"

	"resume-management-backend/internal/delivery/http/response"
	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/logger"
	"resume-management-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// UploadRateLimit throttles uploads per client IP and per account. When the
// limiter has no Redis it lets requests through.
func UploadRateLimit(limiter *security.UploadLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(string(domain.KeyUserID))

		allowed, retryAfter, err := limiter.AllowUpload(c.Request.Context(), c.ClientIP(), userID)
		if err != nil {
			logger.Log.Warn("Upload rate limiter error", "ip", c.ClientIP(), "user_id", userID, "error", err)
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Error(c, http.StatusTooManyRequests, "Too many uploads. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
