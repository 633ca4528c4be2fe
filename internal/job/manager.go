package job

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/export"
	"github.com/bandstand-io/bandstand/internal/progress"
)

// Manager handles export job management. Jobs are mutated by worker
// goroutines while handlers read them, so every accessor works on
// snapshots under the lock.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

// NewManager creates a new job manager
func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Status),
	}
}

// CreateJob creates a new export job for a setlist
func (m *Manager) CreateJob(groupID, setlistID, setlistName string) (*Status, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:          uuid.New().String(),
		Status:      StatusPending,
		Progress:    0,
		Message:     "Export job created",
		GroupID:     groupID,
		SetlistID:   setlistID,
		SetlistName: setlistName,
		StartTime:   time.Now(),
		cancelFunc:  cancel,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return snapshot(job), ctx
}

// GetJob retrieves a job by ID
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return snapshot(job), nil
}

// CancelJob cancels a job that has not finished yet. A job past the
// rendering stage stops at its next stage boundary.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if job.Status != StatusPending && job.Status != StatusRendering && job.Status != StatusUploading {
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}

	job.cancelFunc()
	job.Status = StatusCancelled
	job.Message = "Export cancelled by user"
	endTime := time.Now()
	job.EndTime = &endTime

	return nil
}

// ListJobs lists all jobs with pagination, newest first
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, snapshot(job))
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	start := (page - 1) * pageSize
	end := start + pageSize

	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: (len(jobs) + pageSize - 1) / pageSize,
		}
	}

	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: (len(jobs) + pageSize - 1) / pageSize,
	}
}

// SetStatus moves a job to a new stage. Terminal jobs are left alone so
// a cancellation is not overwritten by a late worker update.
func (m *Manager) SetStatus(jobID, status, message string) error {
	return m.update(jobID, func(job *Status) {
		job.Status = status
		job.Message = message
	})
}

// RecordProgress applies a progress event to the job
func (m *Manager) RecordProgress(jobID string, event progress.Event) error {
	return m.update(jobID, func(job *Status) {
		job.Progress = event.Progress
		job.Message = event.Message
		job.Events = append(job.Events, event)
	})
}

// Complete marks a job as finished and records the export result
func (m *Manager) Complete(jobID, file string, result *export.Result) error {
	return m.update(jobID, func(job *Status) {
		job.Status = StatusCompleted
		job.Progress = float64(ProgressComplete)
		job.Message = "Export completed successfully"
		job.File = file
		if result != nil {
			job.PageCount = result.PageCount
			job.SongCount = result.SongCount
			job.Pages = result.Pages
		}
		endTime := time.Now()
		job.EndTime = &endTime
	})
}

// Fail marks a job as failed, or cancelled when the error is a context
// cancellation. Per-page diagnostics from a partial result are kept.
func (m *Manager) Fail(jobID string, result *export.Result, err error) error {
	return m.update(jobID, func(job *Status) {
		if errors.Is(err, context.Canceled) {
			job.Status = StatusCancelled
			job.Message = "Export was cancelled"
		} else {
			job.Status = StatusFailed
			job.Error = err.Error()
			job.Message = "Export failed"
		}
		if result != nil {
			job.PageCount = result.PageCount
			job.SongCount = result.SongCount
			job.Pages = result.Pages
		}
		endTime := time.Now()
		job.EndTime = &endTime
	})
}

func (m *Manager) update(jobID string, fn func(*Status)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if terminal(job.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
	}
	fn(job)
	return nil
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

// snapshot copies a job so callers never share memory with the worker.
func snapshot(job *Status) *Status {
	copied := *job
	copied.cancelFunc = nil
	copied.Pages = append([]export.PageInfo(nil), job.Pages...)
	copied.Events = append([]progress.Event(nil), job.Events...)
	return &copied
}
