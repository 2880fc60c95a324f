package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagemark/internal/infrastructure/auth"
	"pagemark/internal/shared/constants"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth verifies the bearer token and stores the caller's UID in the
// request context. Every metering endpoint sits behind this: the UID in the
// token is the only user identifier the quota layer trusts.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserUID, claims.UserUID)

		c.Next()
	}
}

// UserUID returns the authenticated caller's UID set by RequireAuth.
func UserUID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUserUID)
}
