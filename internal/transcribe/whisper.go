package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"uniscript/models"
)

const whisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperClient transcribes audio through the OpenAI audio.transcriptions
// API with verbose_json output so segment timings come back with the text.
type WhisperClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewWhisperClient(apiKey, model string) *WhisperClient {
	return &WhisperClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: whisperEndpoint,
		// Long transcriptions of a full 10-minute chunk can take a while.
		httpClient: &http.Client{Timeout: 15 * time.Minute},
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

// Transcribe uploads one audio chunk and returns its transcript. Segment
// timestamps are relative to the chunk itself.
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) (models.Transcript, error) {
	if c.apiKey == "" {
		return models.Transcript{}, fmt.Errorf("transcription provider API key is missing")
	}

	f, err := os.Open(audioPath)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("open audio %s: %w", audioPath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.model); err != nil {
		return models.Transcript{}, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return models.Transcript{}, err
	}
	if err := mw.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return models.Transcript{}, err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return models.Transcript{}, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return models.Transcript{}, fmt.Errorf("read audio %s: %w", audioPath, err)
	}
	if err := mw.Close(); err != nil {
		return models.Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return models.Transcript{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return models.Transcript{}, fmt.Errorf("transcription provider http %d: %s", resp.StatusCode, string(b))
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.Transcript{}, fmt.Errorf("decode transcription response: %w", err)
	}

	segments := make([]models.Segment, 0, len(parsed.Segments))
	for _, seg := range parsed.Segments {
		segments = append(segments, models.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}

	return models.Transcript{Text: parsed.Text, Segments: segments}, nil
}
