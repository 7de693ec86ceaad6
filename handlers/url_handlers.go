package handlers

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"uniscript/utils"
)

var validate = validator.New()

// ProcessURLRequest is the body for URL-based ingestion.
type ProcessURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// ProcessURL downloads a remote video and runs it through the same
// acceptance path as a direct upload.
func (h *ApplicationHandler) ProcessURL(c *fiber.Ctx) error {
	payload := new(ProcessURLRequest)
	if err := c.BodyParser(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			strings.Join(utils.FormatValidationErrors(err), "; "))
	}

	localPath, err := h.Downloader.Download(c.Context(), payload.URL)
	if err != nil {
		h.Logger.WithField("url", payload.URL).WithError(err).Error("could not download video from url")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	// The job's source reference stays the original URL; the pipeline
	// consumes the downloaded file.
	return h.acceptVideo(c, filepath.Base(localPath), payload.URL, localPath, fiber.StatusOK)
}
