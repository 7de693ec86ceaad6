// Package store is the metadata persistence boundary. All cross-component
// effects (orchestrator progress, translation rows) go through it.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"uniscript/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// Store persists jobs, scripts, and translations. The interface exists so
// handlers and the orchestrator can be exercised against a fake in tests.
type Store interface {
	CreateVideo(ctx context.Context, video models.Video) (models.Video, error)
	GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error)
	GetVideoStatus(ctx context.Context, id uuid.UUID) (models.VideoStatus, error)
	// UpdateVideoState upserts status and progress for one job row.
	UpdateVideoState(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateVideoProgress(ctx context.Context, id uuid.UUID, progress int) error
	// MarkVideoFailed records the terminal ERROR state with a message.
	MarkVideoFailed(ctx context.Context, id uuid.UUID, message string) error
	ListLatestVideos(ctx context.Context, limit int) ([]models.Video, error)
	CountVideos(ctx context.Context) (int64, error)

	CreateScript(ctx context.Context, script models.Script) (models.Script, error)
	GetScriptByVideoID(ctx context.Context, videoID uuid.UUID) (models.Script, error)
	CountScripts(ctx context.Context) (int64, error)

	CreateTranslation(ctx context.Context, translation models.Translation) (models.Translation, error)
	GetTranslation(ctx context.Context, id uuid.UUID) (models.Translation, error)
	ListTranslationsByScriptID(ctx context.Context, scriptID uuid.UUID) ([]models.Translation, error)
}
