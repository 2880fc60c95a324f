package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"pagemark/internal/shared/constants"
	"pagemark/internal/shared/logger"
)

// RequestLogger logs one structured line per completed request. Metering
// endpoints are chatty (every screen open hits stats), so successful
// requests log at debug and only failures get promoted.
func RequestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}

		if requestID := c.GetString(constants.ContextKeyRequestID); requestID != "" {
			args = append(args, "request_id", requestID)
		}

		if userUID, exists := c.Get(constants.ContextKeyUserUID); exists {
			args = append(args, "user_uid", userUID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("HTTP request completed with server error", args...)
		case status >= 400:
			log.Warnw("HTTP request completed with client error", args...)
		default:
			log.Debugw("HTTP request completed", args...)
		}
	}
}
