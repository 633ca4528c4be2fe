package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	eventWriteTimeout = 10 * time.Second
	pingInterval      = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is origin-agnostic, matching the permissive CORS policy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// groupEvents upgrades the connection to a WebSocket and forwards the
// group's change events until the client disconnects. A subscriber that
// stops reading misses events instead of blocking the publishers.
func (s *Server) groupEvents(c *gin.Context) {
	groupID := c.Param("groupId")

	ctx, cancel := requestContext(c)
	defer cancel()
	if _, err := s.groups.GetGroup(ctx, groupID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "groupId", groupID, "error", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := s.hub.Subscribe(groupID)
	defer unsubscribe()

	slog.Info("Event subscriber connected", "groupId", groupID, "subscribers", s.hub.Subscribers(groupID))

	// Drain the reader so close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				slog.Debug("Event subscriber write failed", "groupId", groupID, "error", err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
