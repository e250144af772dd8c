package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"video-analyzer/core/models"
)

// ErrNotFound is returned when no record exists for a job id.
var ErrNotFound = errors.New("job record not found")

// ResultStore persists one JSON record per job under a results
// directory. A job has a single writer (its pipeline goroutine), so the
// store only has to guarantee durability and that readers always see a
// complete record.
type ResultStore struct {
	dir string
}

// New creates a store rooted at dir.
func New(dir string) *ResultStore {
	return &ResultStore{dir: dir}
}

// Create writes the initial record for a new job.
func (s *ResultStore) Create(jobID string, job *models.Job) error {
	return s.write(jobID, job)
}

// Update replaces the entire record. Callers pass the complete current
// record, never a delta.
func (s *ResultStore) Update(jobID string, job *models.Job) error {
	return s.write(jobID, job)
}

// Read returns the record for jobID, or ErrNotFound.
func (s *ResultStore) Read(jobID string) (*models.Job, error) {
	data, err := os.ReadFile(s.path(jobID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read job record: %w", err)
	}

	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job record: %w", err)
	}
	return &job, nil
}

// write lands the full record via a temp file and rename so a concurrent
// reader never observes a torn record.
func (s *ResultStore) write(jobID string, job *models.Job) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job record: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, jobID+".*.tmp")
	if err != nil {
		return fmt.Errorf("write job record: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write job record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write job record: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(jobID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write job record: %w", err)
	}
	return nil
}

func (s *ResultStore) path(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}
