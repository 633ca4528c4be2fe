package server

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/job"
	"github.com/bandstand-io/bandstand/internal/service"
	"github.com/bandstand-io/bandstand/internal/storage"
	"github.com/bandstand-io/bandstand/internal/store"
)

// writeError maps service and store sentinels to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, job.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		c.JSON(404, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, job.ErrInvalidState):
		c.JSON(400, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrTimingDisabled):
		c.JSON(409, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(500, ErrorResponse{Error: err.Error()})
	}
}
