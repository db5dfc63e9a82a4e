package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPError интерфейс для ошибок с HTTP статусом и сообщением
// Объявлен здесь, чтобы middleware не зависел от пакета ошибок
type HTTPError interface {
	error
	StatusCode() int
	UserMessage() string
}

// ErrorResponse структура ответа об ошибке
type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteGinError отвечает JSON-ошибкой и логирует внутреннюю причину
// Ошибки без HTTP статуса считаются внутренними
func WriteGinError(c *gin.Context, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "Внутренняя ошибка сервера"

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode()
		message = httpErr.UserMessage()
	}

	reqID := GetRequestIDFromGin(c)
	if status >= http.StatusInternalServerError {
		logger.Error("HTTP error",
			"error", err,
			"status_code", status,
			"request_id", reqID,
			"path", c.Request.URL.Path,
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: reqID,
	})
}
