package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/service"
)

func (s *Server) createMerchItem(c *gin.Context) {
	var req merchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := s.merch.CreateItem(ctx, c.Param("groupId"), service.MerchItemInput{
		Name:       req.Name,
		Size:       req.Size,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, item)
}

func (s *Server) listMerchItems(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := s.merch.ListItems(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"items": items})
}

func (s *Server) getMerchItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := s.merch.GetItem(ctx, c.Param("groupId"), c.Param("itemId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, item)
}

func (s *Server) updateMerchItem(c *gin.Context) {
	var req merchItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := s.merch.UpdateItem(ctx, c.Param("groupId"), c.Param("itemId"), service.MerchItemInput{
		Name:       req.Name,
		Size:       req.Size,
		PriceCents: req.PriceCents,
		Stock:      req.Stock,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, item)
}

// deleteMerchItem removes an item from the catalogue. Recorded sales of
// the item are kept.
func (s *Server) deleteMerchItem(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.merch.DeleteItem(ctx, c.Param("groupId"), c.Param("itemId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, MessageResponse{Message: "Item deleted"})
}

// recordSale godoc
// @Summary Record a merch sale
// @Description Records a sale and decrements the item's stock. Overselling is rejected.
// @Tags Merch
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param request body saleRequest true "Sale details"
// @Success 201 {object} domain.Sale
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Insufficient stock"
// @Router /api/v1/groups/{groupId}/sales [post]
func (s *Server) recordSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	sale, err := s.merch.RecordSale(ctx, c.Param("groupId"), service.SaleInput{
		ItemID:         req.ItemID,
		Quantity:       req.Quantity,
		UnitPriceCents: req.UnitPriceCents,
		MemberID:       req.MemberID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, sale)
}

func (s *Server) listSales(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sales, err := s.merch.ListSales(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"sales": sales})
}
