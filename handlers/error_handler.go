package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"uniscript/utils"
)

// msgVideoTooLarge is the rejection message for uploads over the size
// ceiling, whether the handler's own check or the body limit catches them.
const msgVideoTooLarge = "Video file is too large (> 1GB). Please upload a subtitle file instead or compress the video."

// ErrorHandler maps framework-level errors onto the API's JSON error
// envelope. A body-limit rejection answers with the same 400 the upload
// handler produces, so an oversized upload gets one consistent response
// regardless of which layer stops it first.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
			return utils.RespondWithError(c, fiber.StatusBadRequest, msgVideoTooLarge)
		}
		return utils.RespondWithError(c, fiberErr.Code, fiberErr.Message)
	}
	return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
}
