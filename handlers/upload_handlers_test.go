package handlers

import "testing"

func TestEstimateProcessingTime(t *testing.T) {
	tests := []struct {
		duration    float64
		wantSeconds int
		wantText    string
	}{
		{0, 0, "Calculating..."},
		{-5, 0, "Calculating..."},
		{60, 38, "~38s"},
		{600, 200, "~3m 20s"},
		{3600, 1100, "~18m 20s"},
	}
	for _, tt := range tests {
		seconds, text := estimateProcessingTime(tt.duration)
		if seconds != tt.wantSeconds || text != tt.wantText {
			t.Errorf("estimateProcessingTime(%v) = (%d, %q), want (%d, %q)",
				tt.duration, seconds, text, tt.wantSeconds, tt.wantText)
		}
	}
}
