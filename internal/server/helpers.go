package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// Default TTL for stored export artifacts
	DefaultArtifactTTL = 24 * time.Hour

	// Cleanup interval for expired artifacts
	CleanupInterval = 2 * time.Hour

	// Interval between due-task reminder sweeps
	ReminderInterval = time.Hour

	// Timeout for store calls made on behalf of a request
	requestTimeout = 5 * time.Second
)

// requestContext derives a bounded context for store calls from the
// incoming request.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// StartCleanupWorker starts a background worker that prunes expired
// export artifacts.
func (s *Server) StartCleanupWorker() {
	ticker := time.NewTicker(CleanupInterval)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			s.cleanupExpiredArtifacts()
		}
	}()
	slog.Info("Artifact cleanup worker started", "interval", CleanupInterval, "ttl", DefaultArtifactTTL)
}

func (s *Server) cleanupExpiredArtifacts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.artifacts.CleanupExpired(ctx, DefaultArtifactTTL)
	if err != nil {
		slog.Error("Artifact cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Cleanup completed", "artifacts_removed", removed)
	}
}

// StartReminderWorker starts a background worker that notifies assignees
// of tasks coming due within the configured window.
func (s *Server) StartReminderWorker() {
	window := s.cfg.Notify.DueSoonWindow()
	ticker := time.NewTicker(ReminderInterval)
	go func() {
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			written, err := s.tasks.NotifyDueSoon(ctx, window)
			cancel()
			if err != nil {
				slog.Error("Due-task sweep failed", "error", err)
				continue
			}
			if written > 0 {
				slog.Info("Due-task reminders sent", "count", written)
			}
		}
	}()
	slog.Info("Due-task reminder worker started", "interval", ReminderInterval, "window", window)
}

// SanitizeFilename sanitizes a filename by removing invalid characters
func SanitizeFilename(name string) string {
	// Replace invalid characters with underscores
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "\n", "\r", "\t"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading and trailing spaces and dots
	result = strings.Trim(result, " .")

	// Ensure the filename is not empty
	if result == "" {
		result = "untitled"
	}

	return result
}

// artifactName builds the stored filename for an export. The job id
// keeps concurrent exports of the same setlist apart.
func artifactName(setlistName, jobID string) string {
	return fmt.Sprintf("%s-%s.pdf", SanitizeFilename(setlistName), jobID)
}
