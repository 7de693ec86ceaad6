// Package translate turns a persisted script into a translated script via
// batched, retried provider calls with per-segment failure isolation.
package translate

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"uniscript/internal/retry"
	"uniscript/models"
)

// fallbackMarker prefixes a segment whose translation retries were
// exhausted; the segment degrades instead of failing the whole request.
const fallbackMarker = "[Error] "

// segmentBatchSize bounds in-flight provider calls: calls within a batch
// run concurrently, batches run sequentially.
const segmentBatchSize = 5

// TextTranslator is the translation provider boundary.
type TextTranslator interface {
	TranslateText(ctx context.Context, text, targetLang string) (string, error)
}

// TranslatedScript is the output of one translation request.
type TranslatedScript struct {
	TargetLanguage string
	TranslatedText string
	Segments       []models.Segment
}

// ScriptTranslator applies the retry policy and batching strategy on top
// of a TextTranslator.
type ScriptTranslator struct {
	provider TextTranslator
	policy   retry.Policy
	log      *logrus.Logger
}

func NewScriptTranslator(provider TextTranslator, log *logrus.Logger) *ScriptTranslator {
	return &ScriptTranslator{
		provider: provider,
		policy:   retry.DefaultPolicy(),
		log:      log,
	}
}

func (t *ScriptTranslator) translateWithRetry(ctx context.Context, text, targetLang string) (string, error) {
	var translated string
	err := t.policy.Do(ctx, func() error {
		var callErr error
		translated, callErr = t.provider.TranslateText(ctx, text, targetLang)
		if callErr != nil {
			t.log.WithError(callErr).Warn("translation call failed, will retry if attempts remain")
		}
		return callErr
	})
	return translated, err
}

// Translate produces the translated full text and segments for one script.
// A full-text failure after retries fails the whole request; a segment
// failure after retries degrades that segment to an error-marked copy of
// the original. Segment start/end times are always preserved and results
// keep the source segment order.
func (t *ScriptTranslator) Translate(ctx context.Context, content models.ScriptContent, targetLang string) (TranslatedScript, error) {
	result := TranslatedScript{
		TargetLanguage: targetLang,
		Segments:       []models.Segment{},
	}

	fullText := content.CleanedText
	if fullText == "" {
		fullText = content.RawTranscript.Text
	}
	if fullText != "" {
		translated, err := t.translateWithRetry(ctx, fullText, targetLang)
		if err != nil {
			return TranslatedScript{}, fmt.Errorf("translate full text to %s: %w", targetLang, err)
		}
		result.TranslatedText = translated
	}

	segments := content.RawTranscript.Segments
	if len(segments) == 0 {
		return result, nil
	}

	translated := make([]models.Segment, len(segments))
	for start := 0; start < len(segments); start += segmentBatchSize {
		end := start + segmentBatchSize
		if end > len(segments) {
			end = len(segments)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				seg := segments[i]
				text, err := t.translateWithRetry(ctx, seg.Text, targetLang)
				if err != nil {
					t.log.WithFields(logrus.Fields{
						"segment_start": seg.Start,
						"target_lang":   targetLang,
					}).WithError(err).Error("segment translation exhausted retries, using fallback")
					text = fallbackMarker + seg.Text
				}
				translated[i] = models.Segment{Start: seg.Start, End: seg.End, Text: text}
			}(i)
		}
		wg.Wait()
	}

	result.Segments = translated
	return result, nil
}
