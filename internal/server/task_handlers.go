package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/internal/service"
)

func (s *Server) createTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := s.tasks.Create(ctx, c.Param("groupId"), service.TaskInput{
		Title:       req.Title,
		Notes:       req.Notes,
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(201, task)
}

func (s *Server) listTasks(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, err := s.tasks.List(ctx, c.Param("groupId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"tasks": tasks})
}

func (s *Server) getTask(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := s.tasks.Get(ctx, c.Param("groupId"), c.Param("taskId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := s.tasks.Update(ctx, c.Param("groupId"), c.Param("taskId"), service.TaskInput{
		Title:       req.Title,
		Notes:       req.Notes,
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := s.tasks.Delete(ctx, c.Param("groupId"), c.Param("taskId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, MessageResponse{Message: "Task deleted"})
}

// completeTask marks a task as done. Completing an already completed
// task is a no-op and returns the task unchanged.
func (s *Server) completeTask(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := s.tasks.Complete(ctx, c.Param("groupId"), c.Param("taskId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, task)
}
