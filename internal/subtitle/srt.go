// Package subtitle parses and renders SRT documents. Parsing is
// intentionally lenient: malformed blocks are skipped so bad input yields a
// shorter transcript instead of an error.
package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"uniscript/models"
)

// ParseSRT converts SRT content into a transcript. Blocks without a valid
// timecode line, or with no text after trimming, are dropped. Never fails.
func ParseSRT(content string) models.Transcript {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.TrimSpace(content)

	segments := []models.Segment{}
	var fullText strings.Builder

	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		// lines[0] is the block index, lines[1] the timecode, the rest text.
		timecode := lines[1]
		if !strings.Contains(timecode, "-->") {
			continue
		}
		parts := strings.SplitN(timecode, "-->", 2)
		start := ParseTime(strings.TrimSpace(parts[0]))
		end := ParseTime(strings.TrimSpace(parts[1]))

		text := strings.TrimSpace(strings.Join(lines[2:], " "))
		if text == "" {
			continue
		}

		segments = append(segments, models.Segment{Start: start, End: end, Text: text})
		if fullText.Len() > 0 {
			fullText.WriteByte(' ')
		}
		fullText.WriteString(text)
	}

	return models.Transcript{Text: fullText.String(), Segments: segments}
}

// ParseTime converts an SRT timestamp (HH:MM:SS,mmm) to seconds. Timestamps
// with missing ':' components degrade to 0.
func ParseTime(timestamp string) float64 {
	parts := strings.Split(timestamp, ":")
	if len(parts) < 3 {
		return 0
	}

	hours, _ := strconv.Atoi(parts[0])
	minutes, _ := strconv.Atoi(parts[1])

	secondsParts := strings.SplitN(strings.ReplaceAll(parts[2], ".", ","), ",", 2)
	seconds, _ := strconv.Atoi(secondsParts[0])
	milliseconds := 0
	if len(secondsParts) > 1 {
		milliseconds, _ = strconv.Atoi(secondsParts[1])
	}

	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(milliseconds)/1000
}

// FormatTime renders seconds as an SRT timecode, millisecond precision.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMs := int64(math.Round(seconds * 1000))
	ms := totalMs % 1000
	totalSec := totalMs / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", totalSec/3600, (totalSec/60)%60, totalSec%60, ms)
}

// FormatSRT renders segments as numbered SRT blocks. With no segments it
// emits a single placeholder block spanning the first ten seconds carrying
// the fallback text.
func FormatSRT(segments []models.Segment, fallbackText string) string {
	if len(segments) == 0 {
		return "1\n00:00:00,000 --> 00:00:10,000\n" + fallbackText + "\n"
	}

	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTime(seg.Start), FormatTime(seg.End), seg.Text)
	}
	return b.String()
}
