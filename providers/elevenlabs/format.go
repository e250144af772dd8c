package elevenlabs

import (
	"math"
	"regexp"
	"strings"

	"video-analyzer/core/models"
)

// scribe_v1 returns flat text without timings, so segment boundaries and
// timestamps are estimated from sentence structure and speaking rate.
const (
	wordsPerSecond = 2.5
	sentencePause  = 0.5
	speakerLabel   = "SPEAKER_00"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// formatTranscription turns the API's flat text into the transcript
// shape the pipeline persists.
func formatTranscription(text, language string) *models.Transcription {
	if language == "" {
		language = "auto"
	}
	if text == "" {
		return &models.Transcription{
			Text:     "",
			Segments: []models.Segment{},
			Language: language,
			Duration: 0,
		}
	}

	var segments []models.Segment
	startTime := 0.0
	for _, raw := range sentenceSplit.Split(text, -1) {
		sentence := strings.TrimSpace(raw)
		if sentence == "" {
			continue
		}

		wordCount := len(strings.Fields(sentence))
		endTime := startTime + float64(wordCount)/wordsPerSecond

		segments = append(segments, models.Segment{
			Start:   round2(startTime),
			End:     round2(endTime),
			Text:    sentence,
			Speaker: speakerLabel,
		})
		startTime = endTime + sentencePause
	}

	duration := 0.0
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &models.Transcription{
		Text:     text,
		Segments: segments,
		Language: language,
		Duration: duration,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
