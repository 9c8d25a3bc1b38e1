package middleware

import (
	"errors"

	"talent-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

type ErrorMiddleware struct {
	logger *zap.Logger
}

func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic recovered", zap.Any("panic", r))
				}
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := normalizeError(err)
		if status >= 500 && m.logger != nil {
			m.logger.Error("request failed", zap.String("path", c.OriginalURL()), zap.Error(err))
		}
		return response.Error(c, status, msg, data)
	}
}

func normalizeError(err error) (int, string, interface{}) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		status := appErr.StatusCode
		msg := appErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}

		if status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		return status, msg, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}

		if status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		msg := fiberErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return response.MessageBadRequest
	case fiber.StatusUnauthorized:
		return response.MessageUnauthorized
	case fiber.StatusForbidden:
		return response.MessageForbidden
	case fiber.StatusNotFound:
		return response.MessageNotFound
	case fiber.StatusConflict:
		return response.MessageConflict
	case fiber.StatusUnprocessableEntity:
		return response.MessageUnprocessableEntity
	default:
		if status >= 500 {
			return response.MessageInternalServerError
		}
		return response.MessageError
	}
}
