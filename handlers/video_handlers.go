package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"uniscript/internal/store"
	"uniscript/utils"
)

const defaultListLimit = 10

// GetVideoStatus returns the polling payload for one pipeline run.
func (h *ApplicationHandler) GetVideoStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video id.")
	}

	status, err := h.Store.GetVideoStatus(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found.")
		}
		h.Logger.WithError(err).Error("could not load video status")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load video status.")
	}

	return c.JSON(status)
}

// ListLatestVideos returns the most recent projects, newest first.
func (h *ApplicationHandler) ListLatestVideos(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "limit must be a positive integer.")
		}
		limit = parsed
	}

	videos, err := h.Store.ListLatestVideos(c.Context(), limit)
	if err != nil {
		h.Logger.WithError(err).Error("could not list videos")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to list videos.")
	}

	return c.JSON(fiber.Map{"videos": videos})
}

// GetAnalytics reports aggregate project counts.
func (h *ApplicationHandler) GetAnalytics(c *fiber.Ctx) error {
	totalVideos, err := h.Store.CountVideos(c.Context())
	if err != nil {
		h.Logger.WithError(err).Error("could not count videos")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load analytics.")
	}
	totalScripts, err := h.Store.CountScripts(c.Context())
	if err != nil {
		h.Logger.WithError(err).Error("could not count scripts")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to load analytics.")
	}

	return c.JSON(fiber.Map{
		"total_videos":  totalVideos,
		"total_scripts": totalScripts,
	})
}
