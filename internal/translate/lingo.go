package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LingoClient translates text through the Lingo.dev localization engine.
type LingoClient struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewLingoClient(apiURL, apiKey string) *LingoClient {
	return &LingoClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type lingoRequest struct {
	Text         string `json:"text"`
	SourceLocale string `json:"sourceLocale"`
	TargetLocale string `json:"targetLocale"`
}

type lingoResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// TranslateText localizes a single piece of text. An empty provider result
// falls back to the original text rather than an empty translation.
func (c *LingoClient) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("translation provider API key is missing")
	}

	payload, err := json.Marshal(lingoRequest{
		Text:         text,
		SourceLocale: "en",
		TargetLocale: targetLang,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/i18n/text", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation provider http %d: %s", resp.StatusCode, string(b))
	}

	var parsed lingoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("translation provider: %s", parsed.Error)
	}
	if parsed.Text == "" {
		return text, nil
	}
	return parsed.Text, nil
}
