package models

import "time"

// Job is the durable record for one submitted analysis request
type Job struct {
	ID           string         `json:"jobId"`
	URL          string         `json:"url"`
	Status       JobStatus      `json:"status"`
	StartTime    time.Time      `json:"startTime"`
	EndTime      *time.Time     `json:"endTime,omitempty"`
	StageOutputs map[string]any `json:"stageOutputs,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"

	// StatusNotFound is only ever reported by the query endpoint; it is
	// never written to a record.
	StatusNotFound = "not_found"
)

// Stage names, in pipeline order. StageScreenshot and StageTranscription
// key StageOutputs; the other stages only produce transient artifacts.
const (
	StageScreenshot    = "screenshot"
	StageDownload      = "download"
	StageTranscode     = "transcode"
	StageTranscription = "transcription"
	StageScoring       = "scoring"
)

// NewJob creates the initial record for a freshly submitted URL
func NewJob(id, url string) *Job {
	return &Job{
		ID:        id,
		URL:       url,
		Status:    JobStatusProcessing,
		StartTime: time.Now().UTC(),
	}
}

// SetStageOutput records a completed stage's result. Keys are only ever
// added, never removed, so the record stays monotonic across updates.
func (j *Job) SetStageOutput(stage string, output any) {
	if j.StageOutputs == nil {
		j.StageOutputs = make(map[string]any)
	}
	j.StageOutputs[stage] = output
}

// Terminal reports whether the job has reached a final state
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
