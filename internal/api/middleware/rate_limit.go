package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/api/handler"
	"github.com/Suryaprasath-41/Feedback-System/pkg/redis"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// RateKeyFunc names the subject a request is counted against.
// An empty key leaves the request unlimited.
type RateKeyFunc func(c *gin.Context) string

// RateRule one named limit: at most Limit requests per subject per Window
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
	Key    RateKeyFunc
}

// ByClientIP counts anonymous callers by address
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByRegisterNo counts student requests by the register number in the token,
// so one student cannot spread retries over several addresses
func ByRegisterNo(c *gin.Context) string {
	if regNo := c.GetString(handler.CtxRegisterNo); regNo != "" {
		return "student:" + regNo
	}
	return ""
}

// RateLimit enforces rule with a Redis fixed window. A nil client, a
// non-positive limit, an empty key or a Redis error lets the request through.
func RateLimit(rdb *redis.Client, rule RateRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || rule.Limit <= 0 || rule.Key == nil {
			c.Next()
			return
		}
		subject := rule.Key(c)
		if subject == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := rdb.CheckRateLimit(c.Request.Context(), rule.Name+":"+subject, rule.Limit, rule.Window)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter, rule.Window)))
			response.Error(c, http.StatusTooManyRequests, 10004, "too many requests, please retry later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// retryAfterSeconds rounds the remaining window up to whole seconds, at least 1
func retryAfterSeconds(remaining, window time.Duration) int {
	if remaining <= 0 {
		remaining = window
	}
	s := int(math.Ceil(remaining.Seconds()))
	if s < 1 {
		s = 1
	}
	return s
}
