package folio

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/folio-cms/folio/api/adminapi"
)

// handleError renders errors that reach fiber, e.g. unknown routes, in the
// same format as the api errors
func handleError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	res := adminapi.ErrorResponse{
		Error:            adminapi.ErrorCodeServerError,
		ErrorDescription: err.Error(),
	}
	switch {
	case code == fiber.StatusNotFound:
		res.Error = adminapi.ErrorCodeNotFound
	case code < fiber.StatusInternalServerError:
		res.Error = adminapi.ErrorCodeInvalidRequest
	default:
		log.WithError(err).WithField("path", ctx.Path()).Error("request failed")
	}
	return ctx.Status(code).JSON(res)
}
