package server

import (
	"github.com/gin-gonic/gin"
)

// listNotifications returns a member's notification feed, newest first.
// With ?unread=true only unread notifications are returned.
func (s *Server) listNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"

	ctx, cancel := requestContext(c)
	defer cancel()

	notifications, err := s.notifications.ListForMember(ctx, c.Param("groupId"), c.Param("memberId"), unreadOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"notifications": notifications})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	notification, err := s.notifications.MarkRead(ctx, c.Param("groupId"), c.Param("memberId"), c.Param("notificationId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, notification)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := s.notifications.MarkAllRead(ctx, c.Param("groupId"), c.Param("memberId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(200, gin.H{"marked_read": count})
}
