package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"uniscript/internal/store"
	"uniscript/models"
	"uniscript/utils"
)

// GetScript returns the transcript for a video, decoded for API consumers.
func (h *ApplicationHandler) GetScript(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id.")
	}

	script, content, err := h.loadScript(c, videoID)
	if err != nil {
		return h.scriptLoadError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":         script.ID,
		"video_id":   script.VideoID,
		"is_cleaned": script.IsCleaned,
		"created_at": script.CreatedAt,
		"content":    content,
	})
}

// DownloadScript streams the transcript as an attachment. ?format=json
// returns the full structured content; the default is plain text.
func (h *ApplicationHandler) DownloadScript(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id.")
	}

	script, content, err := h.loadScript(c, videoID)
	if err != nil {
		return h.scriptLoadError(c, err)
	}

	if c.Query("format") == "json" {
		body, err := json.MarshalIndent(content, "", "  ")
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to encode script.")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="script-%s.json"`, script.ID))
		return c.Send(body)
	}

	text := content.CleanedText
	if text == "" {
		text = content.RawTranscript.Text
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="script-%s.txt"`, script.ID))
	return c.SendString(text)
}

func (h *ApplicationHandler) loadScript(c *fiber.Ctx, videoID uuid.UUID) (models.Script, models.ScriptContent, error) {
	script, err := h.Store.GetScriptByVideoID(c.Context(), videoID)
	if err != nil {
		return models.Script{}, models.ScriptContent{}, err
	}
	content, err := models.DecodeScriptContent(script.Content)
	if err != nil {
		return models.Script{}, models.ScriptContent{}, err
	}
	return script, content, nil
}

func (h *ApplicationHandler) scriptLoadError(c *fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound,
			"Script not found. The video may still be processing.")
	}
	h.Logger.WithError(err).Error("could not load script")
	return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load script.")
}
