package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pagemark/internal/shared/constants"
)

// RequestID ensures every request carries an X-Request-ID, generating one
// when the client did not send it. The ID is stored in the context for the
// request logger and echoed back in the response header so clients can
// quote it when reporting billing disputes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Writer.Header().Set(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}
