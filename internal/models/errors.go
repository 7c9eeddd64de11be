package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the application.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicate    = "DUPLICATE"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeAlreadyLiked = "ALREADY_LIKED"
	CodeNotLiked     = "NOT_LIKED"
	CodeInternal     = "INTERNAL_ERROR"
)

// AppError is the application error type. Fields carries per-field
// validation messages; Key names the single-key response entry for
// not-found/duplicate/forbidden conditions (e.g. {"noprofile": "..."}).
type AppError struct {
	Code    string
	Message string
	Key     string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Message == "" && len(e.Fields) > 0 {
		return fmt.Sprintf("validation failed: %v", e.Fields)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps a single-message validation failure.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewFieldValidationError wraps a field->message validation result.
func NewFieldValidationError(fields map[string]string) *AppError {
	return &AppError{Code: CodeValidation, Fields: fields}
}

// NewDuplicateError reports a unique-constraint violation (email, handle).
func NewDuplicateError(key, message string) *AppError {
	return &AppError{Code: CodeDuplicate, Key: key, Message: message}
}

// NewNotFoundError reports an absent entity under the given response key.
func NewNotFoundError(key, message string) *AppError {
	return &AppError{Code: CodeNotFound, Key: key, Message: message}
}

// NewForbiddenError reports an ownership violation.
func NewForbiddenError(key, message string) *AppError {
	return &AppError{Code: CodeForbidden, Key: key, Message: message}
}

// NewUnauthorizedError reports a missing or invalid credential/token.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewAlreadyLikedError reports a duplicate like attempt.
func NewAlreadyLikedError() *AppError {
	return &AppError{Code: CodeAlreadyLiked, Key: "alreadyliked", Message: "User already liked the post"}
}

// NewNotLikedError reports an unlike of a post never liked.
func NewNotLikedError() *AppError {
	return &AppError{Code: CodeNotLiked, Key: "notliked", Message: "You haven't liked the post yet"}
}

// NewInternalError wraps an unexpected failure. The wrapped detail is
// logged, never echoed to clients.
func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(err *AppError) int {
	switch err.Code {
	case CodeValidation, CodeDuplicate, CodeAlreadyLiked, CodeNotLiked:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes the standardized JSON error response.
// Validation failures serialize as the field->message map; keyed errors as
// a single-key map; anything else as {"error": message}.
func RespondWithError(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*AppError)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	status := StatusFor(appErr)
	if len(appErr.Fields) > 0 {
		return c.Status(status).JSON(appErr.Fields)
	}
	if appErr.Key != "" {
		return c.Status(status).JSON(fiber.Map{appErr.Key: appErr.Message})
	}
	return c.Status(status).JSON(fiber.Map{"error": appErr.Message})
}
