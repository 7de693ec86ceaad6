// Package pipeline sequences the processing stages for one job: audio
// extraction, chunking, transcription, cleaning, persistence. It owns all
// Job status/progress transitions.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"uniscript/internal/store"
	"uniscript/internal/transcribe"
	"uniscript/models"
)

// MediaConverter is the media-conversion service boundary used by the
// extraction and chunking stages.
type MediaConverter interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	SplitAudio(ctx context.Context, audioPath string) ([]string, error)
}

// Orchestrator runs the state machine for one job at a time. Each state
// transition is persisted before the stage's work begins, so pollers see
// progress optimistically; the DONE transition alone is written after the
// script row is durable.
type Orchestrator struct {
	store       store.Store
	media       MediaConverter
	transcriber transcribe.Transcriber
	log         *logrus.Logger
}

func NewOrchestrator(st store.Store, media MediaConverter, transcriber transcribe.Transcriber, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{store: st, media: media, transcriber: transcriber, log: log}
}

// Run processes one uploaded video to completion or terminal failure. Any
// stage error is recorded on the job as ERROR with a message and ends the
// run; no stage is retried.
func (o *Orchestrator) Run(ctx context.Context, videoID uuid.UUID, videoPath string) error {
	log := o.log.WithField("video_id", videoID)
	log.Info("pipeline run started")

	if err := o.process(ctx, videoID, videoPath); err != nil {
		log.WithError(err).Error("pipeline run failed")
		if markErr := o.store.MarkVideoFailed(ctx, videoID, err.Error()); markErr != nil {
			log.WithError(markErr).Error("could not record job failure")
		}
		return err
	}

	log.Info("pipeline run finished")
	return nil
}

func (o *Orchestrator) process(ctx context.Context, videoID uuid.UUID, videoPath string) error {
	if err := o.transition(ctx, videoID, StatusExtractingAudio); err != nil {
		return err
	}
	audioPath, err := o.media.ExtractAudio(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("audio extraction: %w", err)
	}

	if err := o.transition(ctx, videoID, StatusAudioExtracted); err != nil {
		return err
	}
	chunks, err := o.media.SplitAudio(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("audio split: %w", err)
	}

	if err := o.transition(ctx, videoID, StatusTranscribing); err != nil {
		return err
	}
	merged, err := o.transcribeChunks(ctx, videoID, audioPath, chunks)
	if err != nil {
		return err
	}

	if err := o.transition(ctx, videoID, StatusFinalizing); err != nil {
		return err
	}

	content := models.ScriptContent{
		RawTranscript: merged,
		CleanedText:   CleanTranscript(merged.Text),
		Language:      "en",
	}
	encoded, err := models.EncodeScriptContent(content)
	if err != nil {
		return err
	}

	script := models.Script{
		ID:        uuid.New(),
		VideoID:   videoID,
		Content:   encoded,
		IsCleaned: true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := o.store.CreateScript(ctx, script); err != nil {
		return fmt.Errorf("persist script: %w", err)
	}

	// DONE is written only once the script row is durable.
	if err := o.transition(ctx, videoID, StatusDone); err != nil {
		return err
	}

	// Intermediate audio is removed on the success path only.
	if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
		o.log.WithField("audio_path", audioPath).WithError(err).Warn("could not remove extracted audio")
	}
	return nil
}

// transcribeChunks walks the ordered chunk list sequentially, merging text
// and segments in chunk order. Segment timestamps stay relative to their
// own chunk. A single failed chunk fails the whole run; nothing partial is
// persisted.
func (o *Orchestrator) transcribeChunks(ctx context.Context, videoID uuid.UUID, audioPath string, chunks []string) (models.Transcript, error) {
	merged := models.Transcript{Segments: []models.Segment{}}
	var text strings.Builder

	for i, chunkPath := range chunks {
		result, err := o.transcriber.Transcribe(ctx, chunkPath)
		if err != nil {
			return models.Transcript{}, fmt.Errorf("transcribe chunk %d/%d: %w", i+1, len(chunks), err)
		}

		if text.Len() > 0 && result.Text != "" {
			text.WriteByte(' ')
		}
		text.WriteString(result.Text)
		merged.Segments = append(merged.Segments, result.Segments...)

		if chunkPath != audioPath {
			if err := os.Remove(chunkPath); err != nil && !os.IsNotExist(err) {
				o.log.WithField("chunk_path", chunkPath).WithError(err).Warn("could not remove transcribed chunk")
			}
		}

		if err := o.store.UpdateVideoProgress(ctx, videoID, chunkProgress(i, len(chunks))); err != nil {
			return models.Transcript{}, fmt.Errorf("persist chunk progress: %w", err)
		}
	}

	merged.Text = text.String()
	return merged, nil
}

func (o *Orchestrator) transition(ctx context.Context, videoID uuid.UUID, status Status) error {
	if err := o.store.UpdateVideoState(ctx, videoID, string(status), status.ProgressFloor()); err != nil {
		return fmt.Errorf("persist status %s: %w", status, err)
	}
	return nil
}

// ProcessVideoJob adapts an orchestrator run to the worker queue. The
// triggering HTTP request has already returned by the time Execute runs,
// so a fresh background context is used.
type ProcessVideoJob struct {
	VideoID      uuid.UUID
	VideoPath    string
	Orchestrator *Orchestrator
}

func (j *ProcessVideoJob) ID() string {
	return j.VideoID.String()
}

func (j *ProcessVideoJob) Execute() error {
	return j.Orchestrator.Run(context.Background(), j.VideoID, j.VideoPath)
}
