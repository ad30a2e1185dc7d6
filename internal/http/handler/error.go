package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/http/middleware"
	"userapi/internal/repository"
	"userapi/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []validation.Violation `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_FAILED", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string, details ...validation.Violation) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// respondError maps a service error onto the envelope. Only unexpected
// failures are logged; the caller never sees their text.
func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var vErr *validation.Error
	var fErr *fiber.Error
	switch {
	case errors.Is(err, errInvalidBody):
		return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", errInvalidBody.Error())
	case errors.As(err, &vErr):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", vErr.Violations...)
	case errors.Is(err, repository.ErrEmptyPatch):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "at least one field required")
	case errors.Is(err, repository.ErrAlreadyExists):
		return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "user already exists")
	case errors.Is(err, repository.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.As(err, &fErr):
		return writeFiberError(c, fErr)
	}

	logger.ErrorContext(c.UserContext(), "request_failed",
		slog.String("request_id", middleware.GetRequestID(c)),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

func writeFiberError(c *fiber.Ctx, e *fiber.Error) error {
	switch e.Code {
	case fiber.StatusBadRequest:
		return writeError(c, e.Code, "BAD_REQUEST", "bad request")
	case fiber.StatusNotFound:
		return writeError(c, e.Code, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return writeError(c, e.Code, "METHOD_NOT_ALLOWED", "method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return writeError(c, e.Code, "BODY_TOO_LARGE", "request body too large")
	case fiber.StatusUnsupportedMediaType:
		return writeError(c, e.Code, "UNSUPPORTED_MEDIA_TYPE", "unsupported media type")
	case fiber.StatusServiceUnavailable:
		return writeError(c, e.Code, "SERVICE_UNAVAILABLE", "service unavailable")
	}
	if e.Code >= fiber.StatusBadRequest && e.Code < fiber.StatusInternalServerError {
		return writeError(c, e.Code, "BAD_REQUEST", e.Message)
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error
// responses for errors that escape a handler, including recovered panics.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, logger, err)
	}
}
