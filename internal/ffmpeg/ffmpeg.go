// Package ffmpeg wraps the ffmpeg/ffprobe binaries for the three media
// operations the pipeline needs: duration probing, audio extraction, and
// size-aware chunk splitting.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxChunkBytes is the payload ceiling for a single transcription
	// request. The provider's hard limit is 25 MB; 24 MB leaves a margin.
	maxChunkBytes = 24 * 1024 * 1024

	// segmentSeconds is the fixed chunk duration used when splitting.
	// Ten minutes of 16 kHz mono WAV stays comfortably under the ceiling.
	segmentSeconds = 600
)

// commandRunner abstracts process execution so split/extract behavior can
// be tested without ffmpeg installed.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %v: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Service invokes the conversion binaries and writes intermediate audio
// files into ProcessedDir.
type Service struct {
	ProcessedDir string
	runner       commandRunner
}

func NewService(processedDir string) *Service {
	return &Service{ProcessedDir: processedDir, runner: execRunner{}}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the media duration in seconds, or 0 when probing is
// unavailable. Callers treat 0 as "unknown", never as an error.
func (s *Service) Probe(ctx context.Context, path string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, nil
	}

	out, err := s.runner.Run(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if probed.Format.Duration == "" {
		return 0, nil
	}

	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
	}
	return duration, nil
}

// ExtractAudio converts a video into the 16 kHz mono WAV the transcription
// provider expects. Returns the path of the extracted file.
func (s *Service) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(s.ProcessedDir, base+".wav")

	_, err := s.runner.Run(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		audioPath,
	)
	if err != nil {
		return "", fmt.Errorf("extract audio from %s: %w", videoPath, err)
	}
	return audioPath, nil
}

// needsSplit is the chunking policy: split only above the payload ceiling.
func needsSplit(sizeBytes int64) bool {
	return sizeBytes >= maxChunkBytes
}

// SplitAudio returns the ordered chunk list for an audio file. Files under
// the payload ceiling come back unchanged as a single-element list. Larger
// files are split by time with a copy codec (no re-encode) and the chunk
// paths are returned in filename order, which matches chronology.
func (s *Service) SplitAudio(ctx context.Context, audioPath string) ([]string, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, fmt.Errorf("stat audio %s: %w", audioPath, err)
	}
	if !needsSplit(info.Size()) {
		return []string{audioPath}, nil
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	pattern := filepath.Join(s.ProcessedDir, base+"_%03d.wav")
	chunkName := regexp.MustCompile("^" + regexp.QuoteMeta(base) + `_\d{3,}\.wav$`)

	// Chunks left behind by an earlier failed run of a same-named file
	// must not leak into this run's transcript.
	if err := s.removeChunks(chunkName); err != nil {
		return nil, err
	}

	_, err = s.runner.Run(ctx, "ffmpeg",
		"-y",
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-c", "copy",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("split audio %s: %w", audioPath, err)
	}

	entries, err := os.ReadDir(s.ProcessedDir)
	if err != nil {
		return nil, fmt.Errorf("list chunks in %s: %w", s.ProcessedDir, err)
	}

	var chunks []string
	for _, entry := range entries {
		if chunkName.MatchString(entry.Name()) {
			chunks = append(chunks, filepath.Join(s.ProcessedDir, entry.Name()))
		}
	}
	sort.Strings(chunks)

	if len(chunks) == 0 {
		return nil, fmt.Errorf("split audio %s: segmenter produced no chunks", audioPath)
	}
	return chunks, nil
}

// removeChunks deletes every file in ProcessedDir whose name matches the
// chunk pattern.
func (s *Service) removeChunks(chunkName *regexp.Regexp) error {
	entries, err := os.ReadDir(s.ProcessedDir)
	if err != nil {
		return fmt.Errorf("list chunks in %s: %w", s.ProcessedDir, err)
	}
	for _, entry := range entries {
		if !chunkName.MatchString(entry.Name()) {
			continue
		}
		path := filepath.Join(s.ProcessedDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale chunk %s: %w", path, err)
		}
	}
	return nil
}
