package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"uniscript/internal/store"
	"uniscript/models"
)

// stateChange is one persisted status/progress update, in order.
type stateChange struct {
	status   string
	progress int
}

type fakeStore struct {
	changes      []stateChange
	scripts      []models.Script
	failedReason string
	scriptErr    error
}

func (f *fakeStore) CreateVideo(ctx context.Context, v models.Video) (models.Video, error) {
	return v, nil
}

func (f *fakeStore) GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error) {
	return models.Video{}, store.ErrNotFound
}

func (f *fakeStore) GetVideoStatus(ctx context.Context, id uuid.UUID) (models.VideoStatus, error) {
	return models.VideoStatus{}, store.ErrNotFound
}

func (f *fakeStore) UpdateVideoState(ctx context.Context, id uuid.UUID, status string, progress int) error {
	f.changes = append(f.changes, stateChange{status, progress})
	return nil
}

func (f *fakeStore) UpdateVideoProgress(ctx context.Context, id uuid.UUID, progress int) error {
	last := ""
	if len(f.changes) > 0 {
		last = f.changes[len(f.changes)-1].status
	}
	f.changes = append(f.changes, stateChange{last, progress})
	return nil
}

func (f *fakeStore) MarkVideoFailed(ctx context.Context, id uuid.UUID, message string) error {
	f.failedReason = message
	f.changes = append(f.changes, stateChange{"ERROR", -1})
	return nil
}

func (f *fakeStore) ListLatestVideos(ctx context.Context, limit int) ([]models.Video, error) {
	return nil, nil
}

func (f *fakeStore) CountVideos(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) CreateScript(ctx context.Context, s models.Script) (models.Script, error) {
	if f.scriptErr != nil {
		return models.Script{}, f.scriptErr
	}
	f.scripts = append(f.scripts, s)
	return s, nil
}

func (f *fakeStore) GetScriptByVideoID(ctx context.Context, videoID uuid.UUID) (models.Script, error) {
	return models.Script{}, store.ErrNotFound
}

func (f *fakeStore) CountScripts(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) CreateTranslation(ctx context.Context, tr models.Translation) (models.Translation, error) {
	return tr, nil
}

func (f *fakeStore) GetTranslation(ctx context.Context, id uuid.UUID) (models.Translation, error) {
	return models.Translation{}, store.ErrNotFound
}

func (f *fakeStore) ListTranslationsByScriptID(ctx context.Context, scriptID uuid.UUID) ([]models.Translation, error) {
	return nil, nil
}

type fakeMedia struct {
	audioPath  string
	chunks     []string
	extractErr error
	splitErr   error
}

func (f *fakeMedia) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return f.audioPath, nil
}

func (f *fakeMedia) SplitAudio(ctx context.Context, audioPath string) ([]string, error) {
	if f.splitErr != nil {
		return nil, f.splitErr
	}
	return f.chunks, nil
}

type fakeTranscriber struct {
	results map[string]models.Transcript
	failOn  string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (models.Transcript, error) {
	if audioPath == f.failOn {
		return models.Transcript{}, errors.New("provider unavailable")
	}
	return f.results[audioPath], nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

func writeTempAudio(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunHappyPath(t *testing.T) {
	dir := t.TempDir()
	audio := writeTempAudio(t, dir, "job.wav")
	chunk1 := writeTempAudio(t, dir, "job_000.wav")
	chunk2 := writeTempAudio(t, dir, "job_001.wav")

	st := &fakeStore{}
	media := &fakeMedia{audioPath: audio, chunks: []string{chunk1, chunk2}}
	tr := &fakeTranscriber{results: map[string]models.Transcript{
		chunk1: {Text: "um hello there", Segments: []models.Segment{{Start: 0, End: 2, Text: "um hello there"}}},
		chunk2: {Text: "general kenobi", Segments: []models.Segment{{Start: 0, End: 3, Text: "general kenobi"}}},
	}}

	o := NewOrchestrator(st, media, tr, testLogger())
	videoID := uuid.New()

	if err := o.Run(context.Background(), videoID, filepath.Join(dir, "job.mp4")); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantStatuses := []string{"EXTRACTING_AUDIO", "AUDIO_EXTRACTED", "TRANSCRIBING", "TRANSCRIBING", "TRANSCRIBING", "FINALIZING", "DONE"}
	if len(st.changes) != len(wantStatuses) {
		t.Fatalf("got %d state changes, want %d: %+v", len(st.changes), len(wantStatuses), st.changes)
	}
	prevProgress := -1
	for i, change := range st.changes {
		if change.status != wantStatuses[i] {
			t.Errorf("change %d status = %s, want %s", i, change.status, wantStatuses[i])
		}
		if change.progress < prevProgress {
			t.Errorf("progress regressed at change %d: %d < %d", i, change.progress, prevProgress)
		}
		prevProgress = change.progress
	}
	if st.changes[len(st.changes)-1].progress != 100 {
		t.Errorf("final progress = %d, want 100", st.changes[len(st.changes)-1].progress)
	}

	if len(st.scripts) != 1 {
		t.Fatalf("expected 1 persisted script, got %d", len(st.scripts))
	}
	content, err := models.DecodeScriptContent(st.scripts[0].Content)
	if err != nil {
		t.Fatalf("persisted script is not decodable: %v", err)
	}
	if content.RawTranscript.Text != "um hello there general kenobi" {
		t.Errorf("merged text = %q", content.RawTranscript.Text)
	}
	if content.CleanedText != "hello there general kenobi" {
		t.Errorf("cleaned text = %q", content.CleanedText)
	}
	if len(content.RawTranscript.Segments) != 2 {
		t.Errorf("expected 2 merged segments, got %d", len(content.RawTranscript.Segments))
	}

	// Extracted audio and chunks are cleared on success.
	for _, path := range []string{audio, chunk1, chunk2} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("intermediate %s should have been removed", path)
		}
	}
}

func TestRunSingleChunkKeepsAudioUntilDone(t *testing.T) {
	dir := t.TempDir()
	audio := writeTempAudio(t, dir, "short.wav")

	st := &fakeStore{}
	media := &fakeMedia{audioPath: audio, chunks: []string{audio}}
	tr := &fakeTranscriber{results: map[string]models.Transcript{
		audio: {Text: "quick note", Segments: []models.Segment{}},
	}}

	o := NewOrchestrator(st, media, tr, testLogger())
	if err := o.Run(context.Background(), uuid.New(), "short.mp4"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if _, err := os.Stat(audio); !os.IsNotExist(err) {
		t.Errorf("audio file should be removed after the run")
	}
	if len(st.scripts) != 1 {
		t.Fatalf("expected 1 script, got %d", len(st.scripts))
	}
}

func TestRunChunkFailureMarksJobFailed(t *testing.T) {
	dir := t.TempDir()
	audio := writeTempAudio(t, dir, "job.wav")
	chunk1 := writeTempAudio(t, dir, "job_000.wav")
	chunk2 := writeTempAudio(t, dir, "job_001.wav")

	st := &fakeStore{}
	media := &fakeMedia{audioPath: audio, chunks: []string{chunk1, chunk2}}
	tr := &fakeTranscriber{
		results: map[string]models.Transcript{chunk1: {Text: "partial"}},
		failOn:  chunk2,
	}

	o := NewOrchestrator(st, media, tr, testLogger())
	err := o.Run(context.Background(), uuid.New(), "job.mp4")
	if err == nil {
		t.Fatal("expected error from failed chunk")
	}

	if st.failedReason == "" {
		t.Error("job should have been marked failed with a message")
	}
	if len(st.scripts) != 0 {
		t.Errorf("no script may be persisted after a failed chunk, got %d", len(st.scripts))
	}
	last := st.changes[len(st.changes)-1]
	if last.status != "ERROR" {
		t.Errorf("last state change = %s, want ERROR", last.status)
	}
}

func TestRunExtractFailure(t *testing.T) {
	st := &fakeStore{}
	media := &fakeMedia{extractErr: errors.New("ffmpeg exploded")}

	o := NewOrchestrator(st, media, &fakeTranscriber{}, testLogger())
	err := o.Run(context.Background(), uuid.New(), "broken.mp4")
	if err == nil {
		t.Fatal("expected extraction error to propagate")
	}
	if st.failedReason == "" {
		t.Error("extraction failure should mark the job failed")
	}
}

func TestRunScriptPersistFailureDoesNotReachDone(t *testing.T) {
	dir := t.TempDir()
	audio := writeTempAudio(t, dir, "job.wav")

	st := &fakeStore{scriptErr: fmt.Errorf("insert rejected")}
	media := &fakeMedia{audioPath: audio, chunks: []string{audio}}
	tr := &fakeTranscriber{results: map[string]models.Transcript{audio: {Text: "words"}}}

	o := NewOrchestrator(st, media, tr, testLogger())
	if err := o.Run(context.Background(), uuid.New(), "job.mp4"); err == nil {
		t.Fatal("expected persistence error to fail the run")
	}

	for _, change := range st.changes {
		if change.status == "DONE" {
			t.Error("DONE must never be recorded when the script insert fails")
		}
	}
}
