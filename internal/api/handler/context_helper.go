package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/pkg/jwt"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// Context keys set by the JWT middleware
const (
	CtxClaims     = "claims"
	CtxUsername   = "username"
	CtxRole       = "role"
	CtxRegisterNo = "register_no"
)

// MustGetClaims extracts the verified token claims.
// On failure a 401 has been written and the caller should return.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}

// MustGetRegisterNo the register number a student token is bound to
func MustGetRegisterNo(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxRegisterNo)
}

// CallerName the operator username, empty for student tokens
func CallerName(c *gin.Context) string {
	return c.GetString(CtxUsername)
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
