package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

// RequestIDKey ключ для request ID в контексте
type RequestIDKey struct{}

// GinRequestIDMiddleware добавляет уникальный request ID к каждому запросу
// ID клиента из заголовка сохраняется, иначе генерируется новый
func GinRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		c.Set("request_id", reqID)
		c.Request = c.Request.WithContext(SetRequestID(c.Request.Context(), reqID))
		c.Header(RequestIDHeader, reqID)

		c.Next()
	}
}

// GetRequestIDFromGin извлекает request ID из Gin context
func GetRequestIDFromGin(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString("request_id")
}

// GetRequestID извлекает request ID из контекста
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	reqID, _ := ctx.Value(RequestIDKey{}).(string)
	return reqID
}

// SetRequestID устанавливает request ID в контекст
func SetRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, reqID)
}
