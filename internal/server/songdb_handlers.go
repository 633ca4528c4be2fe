package server

import (
	"github.com/gin-gonic/gin"
)

// searchSongDB looks up tempo and key candidates for a song. Results
// are suggestions for the client to confirm; nothing is written here.
func (s *Server) searchSongDB(c *gin.Context) {
	if s.lookup == nil {
		c.JSON(503, ErrorResponse{Error: "song lookup is not configured"})
		return
	}

	title := c.Query("title")
	if title == "" {
		c.JSON(400, ErrorResponse{Error: "title query parameter is required"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	matches, err := s.lookup.Search(ctx, title, c.Query("artist"))
	if err != nil {
		c.JSON(502, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, gin.H{"matches": matches})
}
