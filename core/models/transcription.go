package models

// Transcription is the transcription stage output, including per-segment
// AI-detection scores once the scoring stage has run
type Transcription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
}

// Segment is one timed slice of the transcript
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker"`

	// AIProbability is the detector's score in [0,1]. nil marks an
	// unknown score: a blank segment or a failed detector call.
	AIProbability *float64 `json:"ai_probability"`
}
