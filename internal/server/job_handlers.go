package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/job"
)

// getExportStatus godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} job.Status
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/exports/{id} [get]
func (s *Server) getExportStatus(c *gin.Context) {
	jobID := c.Param("id")

	status, err := s.jobs.GetJob(jobID)
	if err != nil {
		c.JSON(404, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, status)
}

// cancelExport godoc
// @Summary Cancel an export job
// @Tags Exports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/exports/{id}/cancel [post]
func (s *Server) cancelExport(c *gin.Context) {
	jobID := c.Param("id")

	if err := s.jobs.CancelJob(jobID); err != nil {
		if errors.Is(err, job.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: err.Error()})
		} else if errors.Is(err, job.ErrInvalidState) {
			c.JSON(400, ErrorResponse{Error: err.Error()})
		} else {
			c.JSON(500, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(200, MessageResponse{Message: "Export cancelled"})
}

// listExports godoc
// @Summary List export jobs
// @Tags Exports
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} job.Response
// @Router /api/v1/exports [get]
func (s *Server) listExports(c *gin.Context) {
	page := 1
	pageSize := job.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	if ps := c.Query("pageSize"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= job.MaxPageSize {
			pageSize = parsed
		}
	}

	response := s.jobs.ListJobs(page, pageSize)
	c.JSON(200, response)
}

// downloadExport godoc
// @Summary Download the exported PDF
// @Description Streams the stored PDF artifact of a completed export job.
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Job ID"
// @Success 200 {file} application/pdf "PDF document"
// @Failure 400 {object} ErrorResponse "Export is not completed yet"
// @Failure 404 {object} ErrorResponse "Job or artifact not found"
// @Router /api/v1/exports/{id}/download [get]
func (s *Server) downloadExport(c *gin.Context) {
	jobID := c.Param("id")

	status, err := s.jobs.GetJob(jobID)
	if err != nil {
		c.JSON(404, ErrorResponse{Error: err.Error()})
		return
	}

	if status.Status != job.StatusCompleted {
		c.JSON(400, ErrorResponse{Error: "Export is not completed yet"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	reader, err := s.artifacts.Open(ctx, status.File)
	if err != nil {
		writeError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", status.File))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already sent; the client receives a truncated body.
		slog.Error("Failed to stream export artifact", "jobID", jobID, "file", status.File, "error", err)
	}
}
