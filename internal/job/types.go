package job

import (
	"context"
	"time"

	"github.com/bandstand-io/bandstand/internal/export"
	"github.com/bandstand-io/bandstand/internal/progress"
)

// Status represents the current state of an export job
type Status struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Progress    float64           `json:"progress"`
	Message     string            `json:"message"`
	Error       string            `json:"error,omitempty"`
	GroupID     string            `json:"group_id"`
	SetlistID   string            `json:"setlist_id"`
	SetlistName string            `json:"setlist_name"`
	File        string            `json:"file,omitempty"`
	PageCount   int               `json:"page_count,omitempty"`
	SongCount   int               `json:"song_count,omitempty"`
	Pages       []export.PageInfo `json:"pages,omitempty"`
	Events      []progress.Event  `json:"events"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	cancelFunc  context.CancelFunc
}

// Request represents the request body for exporting a setlist
type Request struct {
	ShowBPM bool `json:"show_bpm"`
	ShowKey bool `json:"show_key"`
}

// Response represents the response for job listings
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}

// Constants for job status
const (
	StatusPending   = "pending"
	StatusRendering = "rendering"
	StatusUploading = "uploading"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Constants for progress percentages
const (
	ProgressRenderStart = 0
	ProgressRenderEnd   = 80
	ProgressUploadStart = 80
	ProgressUploadEnd   = 99
	ProgressComplete    = 100
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)
