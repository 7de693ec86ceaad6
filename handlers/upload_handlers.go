package handlers

import (
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"uniscript/internal/pipeline"
	"uniscript/internal/store"
	"uniscript/internal/subtitle"
	"uniscript/models"
	"uniscript/utils"
)

// estimateProcessingTime converts a media duration into the user-facing
// ETA. The 0.3 real-time factor comes from transcription benchmarks; 20 s
// covers fixed pipeline overhead.
func estimateProcessingTime(durationSeconds float64) (int, string) {
	if durationSeconds <= 0 {
		return 0, "Calculating..."
	}
	total := int(math.Ceil(durationSeconds*0.3)) + 20
	mins := total / 60
	secs := total % 60
	if mins > 0 {
		return total, fmt.Sprintf("~%dm %ds", mins, secs)
	}
	return total, fmt.Sprintf("~%ds", secs)
}

// UploadMedia accepts a multipart upload carrying exactly one of a video
// or a subtitle file. Subtitle uploads produce a transcript synchronously;
// video uploads start an asynchronous pipeline run and return immediately
// with the job id and an ETA.
func (h *ApplicationHandler) UploadMedia(c *fiber.Ctx) error {
	videoFile, videoErr := c.FormFile("video")
	subtitleFile, subtitleErr := c.FormFile("subtitle")
	hasVideo := videoErr == nil && videoFile != nil
	hasSubtitle := subtitleErr == nil && subtitleFile != nil

	if !hasVideo && !hasSubtitle {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"No file uploaded. Please upload a video or a subtitle file.")
	}
	if hasVideo && hasSubtitle {
		return utils.RespondWithError(c, fiber.StatusBadRequest,
			"Please upload EITHER a video OR a subtitle file, not both.")
	}

	if hasSubtitle {
		return h.uploadSubtitle(c, subtitleFile)
	}
	return h.uploadVideo(c, videoFile)
}

func (h *ApplicationHandler) uploadSubtitle(c *fiber.Ctx, file *multipart.FileHeader) error {
	h.Logger.WithField("filename", file.Filename).Info("subtitle uploaded")

	src, err := file.Open()
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read subtitle file.")
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not read subtitle file.")
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Subtitle file is empty.")
	}

	// Unknown extensions fall back to one untimed text blob.
	transcript := models.Transcript{Text: text, Segments: []models.Segment{}}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == ".srt" || ext == ".txt" {
		transcript = subtitle.ParseSRT(string(raw))
		// No well-formed blocks: keep the whole document as one untimed
		// blob so the stored transcript is never empty.
		if transcript.Text == "" && len(transcript.Segments) == 0 {
			transcript = models.Transcript{Text: text, Segments: []models.Segment{}}
		}
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	// A text-only project is born complete: the transcript exists as soon
	// as the row does.
	video := store.NewVideoRecord(title, models.SubtitleOnlySource, string(pipeline.StatusDone))
	video.Progress = pipeline.StatusDone.ProgressFloor()
	created, err := h.Store.CreateVideo(c.Context(), video)
	if err != nil {
		h.Logger.WithError(err).Error("could not create project from subtitle")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to create project from subtitle.")
	}

	content := models.ScriptContent{
		RawTranscript: transcript,
		CleanedText:   transcript.Text,
		Language:      "en",
	}
	encoded, err := models.EncodeScriptContent(content)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to encode subtitle script.")
	}
	script := models.Script{
		ID:        uuid.New(),
		VideoID:   created.ID,
		Content:   encoded,
		IsCleaned: true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := h.Store.CreateScript(c.Context(), script); err != nil {
		h.Logger.WithError(err).Error("could not save subtitle script")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to save subtitle script.")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Subtitle uploaded successfully. Project created.",
		"video":        created,
		"is_text_only": true,
	})
}

func (h *ApplicationHandler) uploadVideo(c *fiber.Ctx, file *multipart.FileHeader) error {
	h.Logger.WithFields(map[string]any{
		"filename": file.Filename,
		"size":     file.Size,
	}).Info("video uploaded")

	savedPath := filepath.Join(h.Config.UploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveFile(file, savedPath); err != nil {
		h.Logger.WithError(err).Error("could not save uploaded video")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not store uploaded video.")
	}

	if file.Size > h.Config.MaxUploadSize {
		os.Remove(savedPath)
		return utils.RespondWithError(c, fiber.StatusBadRequest, msgVideoTooLarge)
	}

	title := c.FormValue("title")
	if title == "" {
		title = file.Filename
	}

	return h.acceptVideo(c, title, savedPath, savedPath, fiber.StatusCreated)
}

// acceptVideo creates the job row, submits the pipeline run, and answers
// with the ETA. sourceRef is what gets persisted as video_url (a local
// path for uploads, the original URL for URL ingestion); localPath is the
// file the pipeline reads.
func (h *ApplicationHandler) acceptVideo(c *fiber.Ctx, title, sourceRef, localPath string, okStatus int) error {
	// ETA is best-effort; probe failures must never block an upload.
	estimatedSeconds, estimatedText := 0, "Calculating..."
	if duration, err := h.Prober.Probe(c.Context(), localPath); err != nil {
		h.Logger.WithError(err).Warn("could not probe duration for ETA")
	} else {
		estimatedSeconds, estimatedText = estimateProcessingTime(duration)
	}

	video := store.NewVideoRecord(title, sourceRef, string(pipeline.StatusPending))
	created, err := h.Store.CreateVideo(c.Context(), video)
	if err != nil {
		h.Logger.WithError(err).Error("could not save video metadata")
		os.Remove(localPath)
		return utils.RespondWithError(c, fiber.StatusInternalServerError,
			fmt.Sprintf("Failed to save video metadata: %v", err))
	}

	job := &pipeline.ProcessVideoJob{
		VideoID:      created.ID,
		VideoPath:    localPath,
		Orchestrator: h.Orchestrator,
	}
	if err := h.Dispatcher.Submit(job); err != nil {
		h.Logger.WithError(err).Error("could not submit pipeline job")
		if markErr := h.Store.MarkVideoFailed(c.Context(), created.ID, "processing queue is full"); markErr != nil {
			h.Logger.WithError(markErr).Error("could not record submit failure")
		}
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Server busy, try again later.")
	}

	return c.Status(okStatus).JSON(fiber.Map{
		"message":                   "Video accepted. Processing started.",
		"video":                     created,
		"estimated_processing_time": estimatedText,
		"estimated_seconds":         estimatedSeconds,
	})
}
