package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/service"
)

// createGroup godoc
// @Summary Create a group
// @Tags Groups
// @Accept json
// @Produce json
// @Param request body groupRequest true "Group name"
// @Success 201 {object} domain.Group
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/groups [post]
func (s *Server) createGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	group, err := s.groups.CreateGroup(ctx, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, group)
}

func (s *Server) listGroups(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	groups, err := s.groups.ListGroups(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"groups": groups})
}

func (s *Server) getGroup(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	group, err := s.groups.GetGroup(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, group)
}

func (s *Server) renameGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	group, err := s.groups.RenameGroup(ctx, c.Param("groupId"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, group)
}

// addMember godoc
// @Summary Add a member to a group
// @Tags Members
// @Accept json
// @Produce json
// @Param groupId path string true "Group ID"
// @Param request body memberRequest true "Member fields"
// @Success 201 {object} domain.Member
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/groups/{groupId}/members [post]
func (s *Server) addMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := s.groups.AddMember(ctx, c.Param("groupId"), service.MemberInput{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Instrument: req.Instrument,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, member)
}

func (s *Server) listMembers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	members, err := s.groups.ListMembers(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"members": members})
}

func (s *Server) getMember(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := s.groups.GetMember(ctx, c.Param("groupId"), c.Param("memberId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, member)
}

func (s *Server) updateMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	member, err := s.groups.UpdateMember(ctx, c.Param("groupId"), c.Param("memberId"), service.MemberInput{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Instrument: req.Instrument,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, member)
}

func (s *Server) removeMember(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.groups.RemoveMember(ctx, c.Param("groupId"), c.Param("memberId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, MessageResponse{Message: "Member removed"})
}
