package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/service"
)

func (s *Server) createFinanceEntry(c *gin.Context) {
	var req financeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	entry, err := s.finance.CreateEntry(ctx, c.Param("groupId"), service.FinanceEntryInput{
		Title:       req.Title,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Date:        req.Date,
		MemberID:    req.MemberID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, entry)
}

func (s *Server) listFinanceEntries(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	entries, err := s.finance.List(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"entries": entries})
}

func (s *Server) getFinanceEntry(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	entry, err := s.finance.GetEntry(ctx, c.Param("groupId"), c.Param("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, entry)
}

func (s *Server) updateFinanceEntry(c *gin.Context) {
	var req financeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	entry, err := s.finance.UpdateEntry(ctx, c.Param("groupId"), c.Param("entryId"), service.FinanceEntryInput{
		Title:       req.Title,
		AmountCents: req.AmountCents,
		Category:    req.Category,
		Date:        req.Date,
		MemberID:    req.MemberID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, entry)
}

func (s *Server) deleteFinanceEntry(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.finance.DeleteEntry(ctx, c.Param("groupId"), c.Param("entryId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, MessageResponse{Message: "Entry deleted"})
}

// financeSummary godoc
// @Summary Income, expense and net totals for a group
// @Tags Finance
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} domain.FinanceSummary
// @Router /api/v1/groups/{groupId}/finance/summary [get]
func (s *Server) financeSummary(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := s.finance.Summary(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, summary)
}

// scanReceipt extracts merchant, date and amount suggestions from
// receipt text without creating an entry.
func (s *Server) scanReceipt(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	suggestion := s.finance.ScanReceipt([]byte(req.Text))
	c.JSON(200, suggestion)
}

// createEntryFromScan scans receipt text and books the recognised
// amount as an expense in one step.
func (s *Server) createEntryFromScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	entry, err := s.finance.CreateFromScan(ctx, c.Param("groupId"), req.MemberID, []byte(req.Text))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, entry)
}
