package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/export"
	"github.com/bandstand-io/bandstand/internal/job"
	"github.com/bandstand-io/bandstand/internal/progress"
)

// Timeout for a single export job, render and upload included.
const exportTimeout = 5 * time.Minute

// runExportInBackground renders the setlist to a PDF and stores the
// artifact, reporting progress through the job manager. The setlist is
// a snapshot taken at dispatch time; edits made while the job runs do
// not affect the output.
func (s *Server) runExportInBackground(ctx context.Context, jobID string, set *domain.Setlist, opts export.Options) {
	slog.Info("Starting export job", "jobId", jobID, "setlistId", set.ID, "songs", len(set.Songs))

	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	tracker := progress.NewTracker()
	tracker.AddListener(func(event progress.Event) {
		if err := s.jobs.RecordProgress(jobID, event); err != nil {
			slog.Debug("Dropped progress update for finished job", "jobId", jobID, "error", err)
		}
	})

	if err := s.jobs.SetStatus(jobID, job.StatusRendering, "Rendering pages"); err != nil {
		slog.Warn("Export job no longer active", "jobId", jobID, "error", err)
		return
	}
	tracker.Update(progress.StageRendering, float64(job.ProgressRenderStart), "Rendering pages")

	result, err := export.ExportWithProgress(set, opts, func(page, total int) {
		tracker.Update(progress.StageRendering, renderProgress(page, total),
			fmt.Sprintf("Rendered page %d of %d", page, total))
		tracker.UpdatePage(page, total, page)
	})
	if err != nil {
		s.failExport(jobID, tracker, result, err)
		return
	}
	if ctx.Err() != nil {
		// Cancelled or timed out while rendering; the render itself
		// cannot be interrupted, so the check happens here.
		s.failExport(jobID, tracker, result, ctx.Err())
		return
	}

	if err := s.jobs.SetStatus(jobID, job.StatusUploading, "Storing PDF"); err != nil {
		slog.Warn("Export job no longer active", "jobId", jobID, "error", err)
		return
	}
	tracker.Update(progress.StageUploading, float64(job.ProgressUploadStart), "Storing PDF")

	name := artifactName(set.Name, jobID)
	location, err := s.artifacts.Save(ctx, name, bytes.NewReader(result.PDF))
	if err != nil {
		s.failExport(jobID, tracker, result, fmt.Errorf("failed to store artifact: %w", err))
		return
	}

	tracker.Update(progress.StageComplete, float64(job.ProgressComplete), "Export completed")
	if err := s.jobs.Complete(jobID, name, result); err != nil {
		slog.Warn("Export finished after job left active state", "jobId", jobID, "error", err)
		return
	}
	slog.Info("Export job completed", "jobId", jobID, "artifact", name, "location", location, "pages", result.PageCount)
}

// renderProgress maps rendered pages onto the job's render band, so
// upload and finalization keep their share of the progress bar.
func renderProgress(page, total int) float64 {
	return float64(job.ProgressRenderStart) +
		float64(page)/float64(total)*float64(job.ProgressRenderEnd-job.ProgressRenderStart)
}

// failExport records the failure on the job. A job cancelled through
// the API is already terminal; the late worker updates are dropped.
func (s *Server) failExport(jobID string, tracker *progress.Tracker, result *export.Result, err error) {
	tracker.SetError(err)
	if failErr := s.jobs.Fail(jobID, result, err); failErr != nil {
		slog.Warn("Export job already finished", "jobId", jobID, "error", failErr)
		return
	}
	if errors.Is(err, context.Canceled) {
		slog.Warn("Export job cancelled", "jobId", jobID)
	} else {
		slog.Error("Export job failed", "jobId", jobID, "error", err)
	}
}
