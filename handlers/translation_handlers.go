package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"uniscript/internal/store"
	"uniscript/internal/subtitle"
	"uniscript/models"
	"uniscript/utils"
)

// TranslateRequest is the body for requesting a translation.
type TranslateRequest struct {
	TargetLang string `json:"targetLang" validate:"required"`
}

// TranslateVideo translates a finished transcript into the requested
// language and persists the result. Each request produces a new row, so
// repeated requests for the same language accumulate fresh versions.
func (h *ApplicationHandler) TranslateVideo(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id.")
	}

	var payload TranslateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body.")
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "targetLang is required.")
	}

	script, content, err := h.loadScript(c, videoID)
	if err != nil {
		return h.scriptLoadError(c, err)
	}

	result, err := h.Translator.Translate(c.Context(), content, payload.TargetLang)
	if err != nil {
		h.Logger.WithError(err).WithField("target_lang", payload.TargetLang).
			Error("translation failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway,
			fmt.Sprintf("Translation to %s failed: %v", payload.TargetLang, err))
	}

	translation := models.Translation{
		ID:             uuid.New(),
		ScriptID:       script.ID,
		TargetLanguage: result.TargetLanguage,
		TranslatedText: result.TranslatedText,
		Segments:       result.Segments,
		CreatedAt:      time.Now().UTC(),
	}
	created, err := h.Store.CreateTranslation(c.Context(), translation)
	if err != nil {
		h.Logger.WithError(err).Error("could not save translation")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save translation.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Translation completed.",
		"translation": created,
	})
}

// ListTranslations returns every stored translation for a video. Videos
// without a transcript yet simply have none.
func (h *ApplicationHandler) ListTranslations(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id.")
	}

	script, err := h.Store.GetScriptByVideoID(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(fiber.Map{"translations": []models.Translation{}})
		}
		h.Logger.WithError(err).Error("could not load script for translations")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list translations.")
	}

	translations, err := h.Store.ListTranslationsByScriptID(c.Context(), script.ID)
	if err != nil {
		h.Logger.WithError(err).Error("could not list translations")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list translations.")
	}
	if translations == nil {
		translations = []models.Translation{}
	}

	return c.JSON(fiber.Map{"translations": translations})
}

// DownloadTranslation streams a stored translation as an attachment.
// The default format is SRT; ?format=txt returns the plain text.
func (h *ApplicationHandler) DownloadTranslation(c *fiber.Ctx) error {
	translationID, err := uuid.Parse(c.Params("translationId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid translation id.")
	}

	translation, err := h.Store.GetTranslation(c.Context(), translationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Translation not found.")
		}
		h.Logger.WithError(err).Error("could not load translation")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load translation.")
	}

	if c.Query("format") == "txt" {
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="translation-%s-%s.txt"`,
				translation.TargetLanguage, translation.ID))
		return c.SendString(translation.TranslatedText)
	}

	body := subtitle.FormatSRT(translation.Segments, translation.TranslatedText)
	c.Set(fiber.HeaderContentType, "application/x-subrip")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="translation-%s-%s.srt"`,
			translation.TargetLanguage, translation.ID))
	return c.SendString(body)
}
