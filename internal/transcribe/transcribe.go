// Package transcribe calls the speech-to-text provider for one audio chunk
// at a time.
package transcribe

import (
	"context"

	"uniscript/models"
)

// Transcriber converts one audio file into a transcript with timed
// segments. Chunk merging is the orchestrator's job, not the provider's.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (models.Transcript, error)
}
