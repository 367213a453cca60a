package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 carrying the trace ID, so a
// household member can quote it when reporting the problem.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			traceID := GetTraceID(c)
			log.Error("panic recovered",
				zap.Any("panic", r),
				zap.String("trace_id", traceID),
				zap.Int64("char_id", GetCharID(c)),
				zap.String("route", c.FullPath()),
				zap.Stack("stack"),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":    "internal error",
				"trace_id": traceID,
			})
		}()
		c.Next()
	}
}
