package services

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OpError is the failure class a service operation surfaces to the HTTP
// layer: an HTTP-mappable status plus the human-readable message that goes
// into the JSON envelope.
type OpError struct {
	Status  int
	Message string
}

func (e *OpError) Error() string { return e.Message }

func Unauthorized(msg string) *OpError { return &OpError{fiber.StatusUnauthorized, msg} }
func Forbidden(msg string) *OpError    { return &OpError{fiber.StatusForbidden, msg} }
func NotFound(msg string) *OpError     { return &OpError{fiber.StatusNotFound, msg} }
func Validation(msg string) *OpError   { return &OpError{fiber.StatusBadRequest, msg} }
func Conflict(msg string) *OpError     { return &OpError{fiber.StatusConflict, msg} }
func Internal(msg string) *OpError     { return &OpError{fiber.StatusInternalServerError, msg} }

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM's TranslateError covers the common case; the string checks catch
// drivers that don't translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
