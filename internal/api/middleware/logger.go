package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Suryaprasath-41/Feedback-System/internal/api/handler"
)

const healthPath = "/health"

// Logger structured request log. Operator requests carry the username,
// student requests the register number their token is bound to.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		}
		if role := c.GetString(handler.CtxRole); role != "" {
			fields = append(fields, zap.String("role", role))
		}
		if user := c.GetString(handler.CtxUsername); user != "" {
			fields = append(fields, zap.String("user", user))
		}
		if regNo := c.GetString(handler.CtxRegisterNo); regNo != "" {
			fields = append(fields, zap.String("register_no", regNo))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("client error", fields...)
		case c.Request.URL.Path == healthPath:
			logger.Debug("health probe", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
