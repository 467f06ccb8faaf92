package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docdiff/internal/store"
)

// JobStatus represents the state of a comparison job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusAligning  JobStatus = "aligning"
	StatusComparing JobStatus = "comparing"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single document pair comparison.
type Job struct {
	mu sync.Mutex

	ID       string `json:"job_id"`
	NewDocID string `json:"new_doc_id"`
	OldDocID string `json:"old_doc_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	errors   []string
	warnings []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalSections    int      `json:"total_sections"`
	SectionsCompared int      `json:"sections_compared"`
	SectionsFailed   int      `json:"sections_failed"`
	Errors           []string `json:"errors"`
	Warnings         []string `json:"warnings"`
}

// NewJob creates a queued job for a (new, old) document pair.
func NewJob(newDocID, oldDocID string) *Job {
	now := time.Now()
	return &Job{
		ID:        NewJobID(),
		NewDocID:  newDocID,
		OldDocID:  oldDocID,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewJobID returns a time-ordered UUIDv7 string.
func NewJobID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Key is the result store key of the job's document pair.
func (j *Job) Key() string {
	return store.PairKey(j.NewDocID, j.OldDocID)
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddWarning records a non-fatal problem, such as an alignment fallback.
func (j *Job) AddWarning(w string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.warnings = append(j.warnings, w)
	j.Progress.Warnings = j.warnings
	j.UpdatedAt = time.Now()
}

// Warnings returns a copy of the recorded warnings.
func (j *Job) Warnings() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.warnings) == 0 {
		return nil
	}
	return append([]string(nil), j.warnings...)
}

// SetTotalSections records the number of aligned sections.
func (j *Job) SetTotalSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalSections = n
	j.UpdatedAt = time.Now()
}

// RecordSection counts one compared section.
func (j *Job) RecordSection(failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsCompared++
	if failed {
		j.Progress.SectionsFailed++
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Key       string    `json:"file_pair"`
	NewDocID  string    `json:"new_doc_id"`
	OldDocID  string    `json:"old_doc_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:        j.ID,
		Key:       store.PairKey(j.NewDocID, j.OldDocID),
		NewDocID:  j.NewDocID,
		OldDocID:  j.OldDocID,
		Status:    j.Status,
		Phase:     j.Phase,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Progress: Progress{
			TotalSections:    j.Progress.TotalSections,
			SectionsCompared: j.Progress.SectionsCompared,
			SectionsFailed:   j.Progress.SectionsFailed,
			Errors:           nonNil(j.Progress.Errors),
			Warnings:         nonNil(j.Progress.Warnings),
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
