package middleware

import (
	"runtime/debug"
	"time"

	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinZap 访问日志
func GinZap() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= 500 {
			log.L.Error("request", fields...)
			return
		}
		log.L.Info("request", fields...)
	}
}

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.L.Error("panic recovered",
					zap.Any("error", r),
					zap.String("stack", string(debug.Stack())))
				response.Abort(c, 500, "系统异常")
			}
		}()
		c.Next()
	}
}
