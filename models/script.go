package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Segment is a timed span of transcript text. Start and End are seconds
// from the start of the audio, with 0 <= Start < End for well-formed input.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the raw output of transcription or subtitle parsing: the
// full text plus its ordered timed segments.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// ScriptContent is the tagged shape stored in the scripts.content column.
type ScriptContent struct {
	RawTranscript Transcript `json:"raw_transcript"`
	CleanedText   string     `json:"cleaned_text"`
	Language      string     `json:"language"`
}

// Script maps to the scripts table. Content holds a JSON-encoded
// ScriptContent; use DecodeScriptContent rather than probing it directly.
type Script struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	Content   string    `json:"content"`
	IsCleaned bool      `json:"is_cleaned"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// EncodeScriptContent serializes content for the scripts.content column.
func EncodeScriptContent(content ScriptContent) (string, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("encode script content: %w", err)
	}
	return string(raw), nil
}

// DecodeScriptContent validates stored content at the persistence boundary.
// Malformed rows are rejected here instead of being probed field-by-field
// at every read site.
func DecodeScriptContent(raw string) (ScriptContent, error) {
	var content ScriptContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return ScriptContent{}, fmt.Errorf("decode script content: %w", err)
	}
	if content.RawTranscript.Text == "" && len(content.RawTranscript.Segments) == 0 && content.CleanedText == "" {
		return ScriptContent{}, fmt.Errorf("decode script content: empty transcript")
	}
	if content.RawTranscript.Segments == nil {
		content.RawTranscript.Segments = []Segment{}
	}
	return content, nil
}
