package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/api/handler"
	"github.com/Suryaprasath-41/Feedback-System/pkg/jwt"
	"github.com/Suryaprasath-41/Feedback-System/pkg/redis"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// JWTAuth verifies the Authorization: Bearer <token> header.
// With Redis configured, revoked tokens are rejected; a nil client or a
// Redis error lets the token through, matching RateLimit.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		if rdb != nil {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "token revoked")
				c.Abort()
				return
			}
		}

		if claims.Role == jwt.RoleStudent && claims.RegisterNo == "" {
			response.Unauthorized(c, 10002, "token invalid or expired")
			c.Abort()
			return
		}

		c.Set(handler.CtxClaims, claims)
		c.Set(handler.CtxRole, claims.Role)
		c.Set(handler.CtxUsername, claims.Username)
		c.Set(handler.CtxRegisterNo, claims.RegisterNo)

		c.Next()
	}
}

// RoleAuth admits only the listed roles
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(handler.CtxRole)
		if role == "" {
			response.Unauthorized(c, 10002, "not authenticated")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "access denied")
		c.Abort()
	}
}
