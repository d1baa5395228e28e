package adminapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/storage/model"
)

// Error codes used in ErrorResponse
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeValidationFailed = "validation_failed"
	ErrorCodeLocked           = "locked"
	ErrorCodeServerError      = "server_error"
)

// ErrorResponse is the json body of an error response
type ErrorResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description"`
	Key              string              `json:"key,omitempty"`
	Failures         []model.RuleFailure `json:"failures,omitempty"`
}

// ErrorInvalidRequest returns an ErrorResponse for a malformed request
func ErrorInvalidRequest(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeInvalidRequest,
		ErrorDescription: description,
	}
}

// ErrorNotFound returns an ErrorResponse for a missing resource
func ErrorNotFound(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeNotFound,
		ErrorDescription: description,
	}
}

// ErrorServerError returns an ErrorResponse for an internal error
func ErrorServerError(description string) ErrorResponse {
	return ErrorResponse{
		Error:            ErrorCodeServerError,
		ErrorDescription: description,
	}
}

// WriteError maps err to a status code and error body
func WriteError(c *fiber.Ctx, err error) error {
	var validationError *model.ValidationError
	if errors.As(err, &validationError) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(
			ErrorResponse{
				Error:            ErrorCodeValidationFailed,
				ErrorDescription: validationError.Error(),
				Key:              validationError.Key,
				Failures:         validationError.Failures,
			},
		)
	}
	var lockedError model.LockedSettingError
	if errors.As(err, &lockedError) {
		return c.Status(fiber.StatusLocked).JSON(
			ErrorResponse{
				Error:            ErrorCodeLocked,
				ErrorDescription: lockedError.Error(),
			},
		)
	}
	var notFoundError model.NotFoundError
	if errors.As(err, &notFoundError) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorNotFound(notFoundError.Error()))
	}
	var alreadyExistsError model.AlreadyExistsError
	if errors.As(err, &alreadyExistsError) {
		return c.Status(fiber.StatusConflict).JSON(ErrorInvalidRequest(alreadyExistsError.Error()))
	}
	log.WithError(err).WithField("path", c.Path()).Error("admin request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorServerError(err.Error()))
}
