package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// fakeRunner records invocations and simulates ffmpeg by running a
// per-command callback.
type fakeRunner struct {
	commands [][]string
	onRun    func(name string, args []string) ([]byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.commands = append(f.commands, append([]string{name}, args...))
	if f.onRun != nil {
		return f.onRun(name, args)
	}
	return nil, nil
}

func TestNeedsSplit(t *testing.T) {
	tests := []struct {
		size int64
		want bool
	}{
		{0, false},
		{maxChunkBytes - 1, false},
		{maxChunkBytes, true},
		{maxChunkBytes * 4, true},
	}
	for _, tt := range tests {
		if got := needsSplit(tt.size); got != tt.want {
			t.Errorf("needsSplit(%d) = %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestExtractAudioArguments(t *testing.T) {
	runner := &fakeRunner{}
	s := &Service{ProcessedDir: t.TempDir(), runner: runner}

	got, err := s.ExtractAudio(context.Background(), "/uploads/lecture.mp4")
	if err != nil {
		t.Fatalf("ExtractAudio returned error: %v", err)
	}

	want := filepath.Join(s.ProcessedDir, "lecture.wav")
	if got != want {
		t.Errorf("audio path = %q, want %q", got, want)
	}

	if len(runner.commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(runner.commands))
	}
	args := runner.commands[0]
	for _, pair := range [][2]string{{"-ar", "16000"}, {"-ac", "1"}, {"-f", "wav"}} {
		if !hasArgPair(args, pair[0], pair[1]) {
			t.Errorf("command missing %s %s: %v", pair[0], pair[1], args)
		}
	}
}

func TestSplitAudioSmallFilePassesThrough(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "small.wav")
	if err := os.WriteFile(audio, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	s := &Service{ProcessedDir: dir, runner: runner}

	chunks, err := s.SplitAudio(context.Background(), audio)
	if err != nil {
		t.Fatalf("SplitAudio returned error: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != audio {
		t.Errorf("chunks = %v, want [%s]", chunks, audio)
	}
	if len(runner.commands) != 0 {
		t.Errorf("no ffmpeg invocation expected under the size ceiling, got %v", runner.commands)
	}
}

func TestSplitAudioLargeFileReturnsOrderedChunks(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "long.wav")
	big := make([]byte, maxChunkBytes)
	if err := os.WriteFile(audio, big, 0o644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{onRun: func(name string, args []string) ([]byte, error) {
		// Simulate the segmenter writing chunk files, deliberately out of
		// creation order.
		for _, n := range []string{"long_002.wav", "long_000.wav", "long_001.wav"} {
			if err := os.WriteFile(filepath.Join(dir, n), []byte("RIFF"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}}
	s := &Service{ProcessedDir: dir, runner: runner}

	chunks, err := s.SplitAudio(context.Background(), audio)
	if err != nil {
		t.Fatalf("SplitAudio returned error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "long_000.wav"),
		filepath.Join(dir, "long_001.wav"),
		filepath.Join(dir, "long_002.wav"),
	}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}

	args := runner.commands[0]
	if !hasArgPair(args, "-segment_time", "600") {
		t.Errorf("split command missing -segment_time 600: %v", args)
	}
	if !hasArgPair(args, "-c", "copy") {
		t.Errorf("split command must use a copy codec: %v", args)
	}
}

func TestSplitAudioIgnoresStaleAndUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "long.wav")
	if err := os.WriteFile(audio, make([]byte, maxChunkBytes), 0o644); err != nil {
		t.Fatal(err)
	}
	// A chunk leaked by an earlier failed run of the same file, and a
	// similarly named file that is not a chunk at all.
	stale := filepath.Join(dir, "long_007.wav")
	for _, n := range []string{"long_007.wav", "long_notes.wav"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	runner := &fakeRunner{onRun: func(name string, args []string) ([]byte, error) {
		for _, n := range []string{"long_000.wav", "long_001.wav"} {
			if err := os.WriteFile(filepath.Join(dir, n), []byte("RIFF"), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}}
	s := &Service{ProcessedDir: dir, runner: runner}

	chunks, err := s.SplitAudio(context.Background(), audio)
	if err != nil {
		t.Fatalf("SplitAudio returned error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "long_000.wav"),
		filepath.Join(dir, "long_001.wav"),
	}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %v, want %v", chunks, want)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale chunk should have been removed before splitting")
	}
	if _, err := os.Stat(filepath.Join(dir, "long_notes.wav")); err != nil {
		t.Error("unrelated file must not be touched")
	}
}

func TestSplitAudioMissingFile(t *testing.T) {
	s := &Service{ProcessedDir: t.TempDir(), runner: &fakeRunner{}}
	if _, err := s.SplitAudio(context.Background(), filepath.Join(s.ProcessedDir, "gone.wav")); err == nil {
		t.Fatal("expected error for missing audio file")
	}
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}
