package subtitle

import (
	"strings"
	"testing"

	"uniscript/models"
)

func TestParseSRT(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:04,000\nHello world\n\n" +
		"2\n00:00:04,500 --> 00:00:06,000\nSecond line\n"

	got := ParseSRT(input)

	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got.Segments))
	}
	if got.Segments[0].Start != 1.0 || got.Segments[0].End != 4.0 {
		t.Errorf("segment 0 times = %v..%v, want 1..4", got.Segments[0].Start, got.Segments[0].End)
	}
	if got.Segments[1].Start != 4.5 {
		t.Errorf("segment 1 start = %v, want 4.5", got.Segments[1].Start)
	}
	if got.Text != "Hello world Second line" {
		t.Errorf("full text = %q", got.Text)
	}
}

func TestParseSRTSkipsMalformedBlocks(t *testing.T) {
	input := strings.Join([]string{
		"1\n00:00:01,000 --> 00:00:02,000\nKept",
		"2\nno timecode here\nDropped",
		"3\n00:00:03,000 --> 00:00:04,000\n   ",
		"just one line",
		"4\n00:00:05,000 --> 00:00:06,000\nAlso kept",
	}, "\n\n")

	got := ParseSRT(input)

	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(got.Segments), got.Segments)
	}
	if got.Segments[0].Text != "Kept" || got.Segments[1].Text != "Also kept" {
		t.Errorf("unexpected segment texts: %+v", got.Segments)
	}
}

func TestParseSRTHandlesCRLFAndMultilineText(t *testing.T) {
	input := "1\r\n00:00:00,000 --> 00:00:02,000\r\nLine one\r\nLine two\r\n"

	got := ParseSRT(input)

	if len(got.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(got.Segments))
	}
	if got.Segments[0].Text != "Line one Line two" {
		t.Errorf("text = %q, want lines joined by a space", got.Segments[0].Text)
	}
}

func TestParseSRTEmptyInput(t *testing.T) {
	got := ParseSRT("")
	if got.Text != "" || len(got.Segments) != 0 {
		t.Errorf("empty input should yield empty transcript, got %+v", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:00:00,000", 0},
		{"00:00:01,500", 1.5},
		{"01:02:03,250", 3723.25},
		{"00:00:05.100", 5.1},
		{"42", 0},
		{"05:30", 0},
	}
	for _, tt := range tests {
		if got := ParseTime(tt.in); got != tt.want {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00,000"},
		{1.5, "00:00:01,500"},
		{3723.25, "01:02:03,250"},
		{59.9995, "00:01:00,000"},
		{-3, "00:00:00,000"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSRT(t *testing.T) {
	segments := []models.Segment{
		{Start: 0, End: 2, Text: "Hi"},
		{Start: 2, End: 5, Text: "Bye"},
	}

	got := FormatSRT(segments, "")

	want := "1\n00:00:00,000 --> 00:00:02,000\nHi\n\n" +
		"2\n00:00:02,000 --> 00:00:05,000\nBye\n\n"
	if got != want {
		t.Errorf("FormatSRT = %q, want %q", got, want)
	}
}

func TestFormatSRTFallbackBlock(t *testing.T) {
	got := FormatSRT(nil, "Untimed text")

	want := "1\n00:00:00,000 --> 00:00:10,000\nUntimed text\n"
	if got != want {
		t.Errorf("FormatSRT fallback = %q, want %q", got, want)
	}
}

func TestParseFormatTimeRoundTrip(t *testing.T) {
	for _, ts := range []string{"00:00:07,040", "00:15:00,001", "02:59:59,999"} {
		if got := FormatTime(ParseTime(ts)); got != ts {
			t.Errorf("round trip %q = %q", ts, got)
		}
	}
}
