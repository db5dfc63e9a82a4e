package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError ошибка API с HTTP статусом и сообщением для клиента
type AppError struct {
	Code    int    `json:"status_code"` // HTTP статус код
	Message string `json:"message"`     // Сообщение для пользователя
	Err     error  `json:"-"`           // Внутренняя ошибка для логов, не сериализуется
}

// Error реализует интерфейс error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает вложенную ошибку для errors.Is и errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode возвращает HTTP статус код ошибки
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage возвращает сообщение для пользователя
func (e *AppError) UserMessage() string {
	return e.Message
}

// NewNotFoundError создает ошибку 404 Not Found
func NewNotFoundError(message string, err error) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: err}
}

// NewValidationError создает ошибку 400 Bad Request
func NewValidationError(message string, err error) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// NewServiceUnavailableError создает ошибку 503 Service Unavailable
func NewServiceUnavailableError(message string, err error) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Message: message, Err: err}
}

// NewInternalError создает ошибку 500 Internal Server Error
// Для пользователя возвращается общее сообщение, детали только в логах
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "Внутренняя ошибка сервера",
		Err:     errors.Join(errors.New(message), err),
	}
}

// WrapError приводит произвольную ошибку к AppError
// AppError возвращается как есть, остальные ошибки становятся InternalError
func WrapError(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message, err)
}
