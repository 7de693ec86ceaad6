package models

import (
	"time"

	"github.com/google/uuid"
)

// SubtitleOnlySource is the video_url sentinel for projects created from a
// subtitle upload, where no media file exists to process.
const SubtitleOnlySource = "SUBTITLE_ONLY_UPLOAD"

// Video represents one upload-to-transcript unit of work (a job) in the
// videos table. Status and progress are owned exclusively by the pipeline
// orchestrator after creation.
type Video struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	VideoURL         string    `json:"video_url"`
	Status           string    `json:"status"`
	Progress         int       `json:"progress"`
	ErrorMessage     *string   `json:"error_message,omitempty"`
	OriginalLanguage string    `json:"original_language"`
	CreatedAt        time.Time `json:"created_at,omitempty"`
}

// VideoStatus is the polling view of a job.
type VideoStatus struct {
	Status       string  `json:"status"`
	Progress     int     `json:"progress"`
	ErrorMessage *string `json:"error_message"`
}
