package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	jwtmw "product_backend/internal/platform/jwt"
)

// AccessLog は処理済みリクエストを1行の構造化ログとして出力します。
// 5xxはError、4xxはWarn、それ以外はInfoレベルです。
func AccessLog(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
			slog.Int("body_size", c.Writer.Size()),
		}
		if uid, ok := jwtmw.UserID(c); ok {
			attrs = append(attrs, slog.String("user_id", uid))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		log.LogAttrs(c.Request.Context(), level, "request completed", attrs...)
	}
}
