package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// GinCORSMiddleware разрешает чтение API из браузера
// API только читает данные, поэтому разрешены GET и OPTIONS
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Accept-Encoding, X-Request-ID, Cache-Control")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// GinGzipMiddleware включает сжатие ответов
func GinGzipMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed)
}

// GinLoggerMiddleware логирует каждый запрос через slog
func GinLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
			"size", c.Writer.Size(),
			"request_id", GetRequestIDFromGin(c),
		}
		if err := c.Errors.Last(); err != nil {
			attrs = append(attrs, "error", err.Error())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// GinRecoveryMiddleware обрабатывает паники и отвечает JSON-ошибкой
func GinRecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID := GetRequestIDFromGin(c)
				logger.Error("panic recovered",
					"panic", err,
					"stack", string(debug.Stack()),
					"request_id", reqID,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "Внутренняя ошибка сервера",
					Timestamp: time.Now().Format(time.RFC3339),
					RequestID: reqID,
				})
			}
		}()

		c.Next()
	}
}
