// Package downloader fetches a remote video into the uploads directory so
// the rest of the pipeline can treat it like a local upload.
package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kkdai/youtube/v2"
)

var unsafeTitleChars = regexp.MustCompile(`[^\w\s-]`)

// Client downloads YouTube videos for URL-based ingestion.
type Client struct {
	UploadDir string
	yt        youtube.Client
}

func New(uploadDir string) *Client {
	return &Client{UploadDir: uploadDir}
}

// Download fetches the video behind url and returns the local file path.
// The audio-bearing format is enough; the pipeline discards the video
// stream during extraction anyway.
func (c *Client) Download(ctx context.Context, url string) (string, error) {
	video, err := c.yt.GetVideoContext(ctx, url)
	if err != nil {
		return "", fmt.Errorf("resolve video url: %w", err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", fmt.Errorf("no downloadable format with audio for %q", video.Title)
	}

	stream, _, err := c.yt.GetStreamContext(ctx, video, &formats[0])
	if err != nil {
		return "", fmt.Errorf("open video stream: %w", err)
	}
	defer stream.Close()

	title := unsafeTitleChars.ReplaceAllString(video.Title, "_")
	outPath := filepath.Join(c.UploadDir, title+".mp4")

	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create download target: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("download video: %w", err)
	}
	return outPath, nil
}
