package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"uniscript/models"
)

const (
	videosTable       = "videos"
	scriptsTable      = "scripts"
	translationsTable = "translations"
)

// SupabaseStore implements Store on top of the Supabase PostgREST API.
// Writes are single-row upserts addressed by primary key; exactly one
// orchestrator run owns a job's status lifecycle at a time, so there is no
// optimistic-concurrency check.
type SupabaseStore struct {
	client *supa.Client
}

func NewSupabaseStore(client *supa.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

// insertOne inserts a row and decodes the representation PostgREST returns.
func (s *SupabaseStore) insertOne(table string, record, out any) error {
	body, _, err := s.client.From(table).
		Insert(record, false, "", "representation", "").
		Execute()
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	if err := unmarshalFirst(body, out); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// unmarshalFirst decodes the first element of a PostgREST array response.
func unmarshalFirst(body []byte, out any) error {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return json.Unmarshal(rows[0], out)
}

func (s *SupabaseStore) CreateVideo(_ context.Context, video models.Video) (models.Video, error) {
	var created models.Video
	if err := s.insertOne(videosTable, video, &created); err != nil {
		return models.Video{}, err
	}
	return created, nil
}

func (s *SupabaseStore) GetVideo(_ context.Context, id uuid.UUID) (models.Video, error) {
	var videos []models.Video
	body, _, err := s.client.From(videosTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return models.Video{}, fmt.Errorf("fetch video %s: %w", id, err)
	}
	if err := json.Unmarshal(body, &videos); err != nil {
		return models.Video{}, fmt.Errorf("decode video %s: %w", id, err)
	}
	if len(videos) == 0 {
		return models.Video{}, ErrNotFound
	}
	return videos[0], nil
}

func (s *SupabaseStore) GetVideoStatus(ctx context.Context, id uuid.UUID) (models.VideoStatus, error) {
	video, err := s.GetVideo(ctx, id)
	if err != nil {
		return models.VideoStatus{}, err
	}
	return models.VideoStatus{
		Status:       video.Status,
		Progress:     video.Progress,
		ErrorMessage: video.ErrorMessage,
	}, nil
}

// updateVideo applies a partial update to one job row. An exact count is
// requested so a vanished row surfaces as ErrNotFound instead of silence.
func (s *SupabaseStore) updateVideo(id uuid.UUID, updates map[string]any) error {
	_, count, err := s.client.From(videosTable).
		Update(updates, "", "exact").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("update video %s: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SupabaseStore) UpdateVideoState(_ context.Context, id uuid.UUID, status string, progress int) error {
	return s.updateVideo(id, map[string]any{
		"status":   status,
		"progress": progress,
	})
}

func (s *SupabaseStore) UpdateVideoProgress(_ context.Context, id uuid.UUID, progress int) error {
	return s.updateVideo(id, map[string]any{"progress": progress})
}

func (s *SupabaseStore) MarkVideoFailed(_ context.Context, id uuid.UUID, message string) error {
	return s.updateVideo(id, map[string]any{
		"status":        "ERROR",
		"error_message": message,
	})
}

func (s *SupabaseStore) ListLatestVideos(_ context.Context, limit int) ([]models.Video, error) {
	if limit <= 0 {
		limit = 10
	}
	var videos []models.Video
	body, _, err := s.client.From(videosTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

func (s *SupabaseStore) CountVideos(_ context.Context) (int64, error) {
	_, count, err := s.client.From(videosTable).
		Select("*", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}

func (s *SupabaseStore) CreateScript(_ context.Context, script models.Script) (models.Script, error) {
	var created models.Script
	if err := s.insertOne(scriptsTable, script, &created); err != nil {
		return models.Script{}, err
	}
	return created, nil
}

func (s *SupabaseStore) GetScriptByVideoID(_ context.Context, videoID uuid.UUID) (models.Script, error) {
	var scripts []models.Script
	body, _, err := s.client.From(scriptsTable).
		Select("*", "", false).
		Eq("video_id", videoID.String()).
		Execute()
	if err != nil {
		return models.Script{}, fmt.Errorf("fetch script for video %s: %w", videoID, err)
	}
	if err := json.Unmarshal(body, &scripts); err != nil {
		return models.Script{}, fmt.Errorf("decode script for video %s: %w", videoID, err)
	}
	if len(scripts) == 0 {
		return models.Script{}, ErrNotFound
	}
	return scripts[0], nil
}

func (s *SupabaseStore) CountScripts(_ context.Context) (int64, error) {
	_, count, err := s.client.From(scriptsTable).
		Select("*", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count scripts: %w", err)
	}
	return count, nil
}

func (s *SupabaseStore) CreateTranslation(_ context.Context, translation models.Translation) (models.Translation, error) {
	var created models.Translation
	if err := s.insertOne(translationsTable, translation, &created); err != nil {
		return models.Translation{}, err
	}
	return created, nil
}

func (s *SupabaseStore) GetTranslation(_ context.Context, id uuid.UUID) (models.Translation, error) {
	var translations []models.Translation
	body, _, err := s.client.From(translationsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return models.Translation{}, fmt.Errorf("fetch translation %s: %w", id, err)
	}
	if err := json.Unmarshal(body, &translations); err != nil {
		return models.Translation{}, fmt.Errorf("decode translation %s: %w", id, err)
	}
	if len(translations) == 0 {
		return models.Translation{}, ErrNotFound
	}
	return translations[0], nil
}

func (s *SupabaseStore) ListTranslationsByScriptID(_ context.Context, scriptID uuid.UUID) ([]models.Translation, error) {
	var translations []models.Translation
	body, _, err := s.client.From(translationsTable).
		Select("*", "", false).
		Eq("script_id", scriptID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list translations for script %s: %w", scriptID, err)
	}
	if err := json.Unmarshal(body, &translations); err != nil {
		return nil, fmt.Errorf("decode translations for script %s: %w", scriptID, err)
	}
	if translations == nil {
		translations = []models.Translation{}
	}
	return translations, nil
}

// NewVideoRecord builds the row for a freshly accepted upload.
func NewVideoRecord(title, sourceRef, status string) models.Video {
	return models.Video{
		ID:               uuid.New(),
		Title:            title,
		VideoURL:         sourceRef,
		Status:           status,
		Progress:         0,
		OriginalLanguage: "en",
		CreatedAt:        time.Now().UTC(),
	}
}
