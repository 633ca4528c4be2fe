package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/export"
	"github.com/bandstand-io/bandstand/internal/job"
	"github.com/bandstand-io/bandstand/internal/service"
)

func (s *Server) createSetlist(c *gin.Context) {
	var req setlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Create(ctx, c.Param("groupId"), service.SetlistInput{
		Name:         req.Name,
		ConcertDate:  req.ConcertDate,
		ConcertEnd:   req.ConcertEnd,
		BreakMinutes: req.BreakMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, set)
}

func (s *Server) listSetlists(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sets, err := s.setlists.List(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"setlists": sets})
}

func (s *Server) getSetlist(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Get(ctx, c.Param("groupId"), c.Param("setlistId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

// updateSetlist replaces the setlist name and concert parameters.
// Clearing the concert date also clears every song start time.
func (s *Server) updateSetlist(c *gin.Context) {
	var req setlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Update(ctx, c.Param("groupId"), c.Param("setlistId"), service.SetlistInput{
		Name:         req.Name,
		ConcertDate:  req.ConcertDate,
		ConcertEnd:   req.ConcertEnd,
		BreakMinutes: req.BreakMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

func (s *Server) deleteSetlist(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.setlists.Delete(ctx, c.Param("groupId"), c.Param("setlistId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, MessageResponse{Message: "Setlist deleted"})
}

func (s *Server) addSong(c *gin.Context) {
	var req songRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.AddSong(ctx, c.Param("groupId"), c.Param("setlistId"), service.SongInput{
		Title:       req.Title,
		DurationMin: req.DurationMin,
		DurationSec: req.DurationSec,
		BPM:         req.BPM,
		Key:         req.Key,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, set)
}

func (s *Server) updateSong(c *gin.Context) {
	var req songRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.UpdateSong(ctx, c.Param("groupId"), c.Param("setlistId"), c.Param("songId"), service.SongInput{
		Title:       req.Title,
		DurationMin: req.DurationMin,
		DurationSec: req.DurationSec,
		BPM:         req.BPM,
		Key:         req.Key,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

func (s *Server) removeSong(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.RemoveSong(ctx, c.Param("groupId"), c.Param("setlistId"), c.Param("songId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

func (s *Server) reorderSongs(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Reorder(ctx, c.Param("groupId"), c.Param("setlistId"), *req.From, *req.To)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

// importSongs appends the songs of another setlist with fresh ids and
// cleared start times.
func (s *Server) importSongs(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.ImportSongs(ctx, c.Param("groupId"), c.Param("setlistId"), req.SourceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

// scheduleSetlist recomputes every song start time with the selected
// mode. A setlist without a concert date cannot be scheduled.
func (s *Server) scheduleSetlist(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Schedule(ctx, c.Param("groupId"), c.Param("setlistId"), req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

func (s *Server) setSongStart(c *gin.Context) {
	var req startTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.SetSongStart(ctx, c.Param("groupId"), c.Param("setlistId"), c.Param("songId"), req.StartTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, set)
}

// exportSetlist godoc
// @Summary Start a PDF export of a setlist
// @Description Submits a background job that renders the setlist as a PDF and stores the artifact.
// @Tags Exports
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param setlistId path string true "Setlist ID"
// @Param request body job.Request false "Export options"
// @Success 202 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/groups/{groupId}/setlists/{setlistId}/export [post]
func (s *Server) exportSetlist(c *gin.Context) {
	var req job.Request
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	set, err := s.setlists.Get(ctx, c.Param("groupId"), c.Param("setlistId"))
	if err != nil {
		writeError(c, err)
		return
	}

	status, jobCtx := s.jobs.CreateJob(set.GroupID, set.ID, set.Name)
	go s.runExportInBackground(jobCtx, status.ID, set, export.Options{
		ShowBPM: req.ShowBPM,
		ShowKey: req.ShowKey,
	})

	c.JSON(202, gin.H{
		"message": "Export started",
		"jobId":   status.ID,
	})
}
