package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bandstand-io/bandstand/config"
	"github.com/bandstand-io/bandstand/internal/job"
	"github.com/bandstand-io/bandstand/internal/notify"
	"github.com/bandstand-io/bandstand/internal/service"
	"github.com/bandstand-io/bandstand/internal/songdb"
	"github.com/bandstand-io/bandstand/internal/storage"
	"github.com/bandstand-io/bandstand/internal/store"
)

// Server handles HTTP requests for the band management API
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	store     *store.Store
	hub       *service.Hub
	artifacts storage.Storage
	jobs      *job.Manager
	lookup    songdb.Lookup

	groups        *service.GroupService
	tasks         *service.TaskService
	setlists      *service.SetlistService
	merch         *service.MerchService
	finance       *service.FinanceService
	notifications *service.NotificationService
}

// New creates a new HTTP server instance wired to the given store and
// artifact storage.
func New(cfg *config.Config, st *store.Store, artifacts storage.Storage) *Server {
	gin.SetMode(gin.ReleaseMode)

	hub := service.NewHub()
	notifier := notify.New(st.Notifications, cfg.Notify.Scope)

	server := &Server{
		cfg:           cfg,
		store:         st,
		hub:           hub,
		artifacts:     artifacts,
		jobs:          job.NewManager(),
		groups:        service.NewGroupService(st, hub),
		tasks:         service.NewTaskService(st, hub, notifier),
		setlists:      service.NewSetlistService(st, hub),
		merch:         service.NewMerchService(st, hub),
		finance:       service.NewFinanceService(st, hub),
		notifications: service.NewNotificationService(st, hub),
	}
	if cfg.SongDB.APIURL != "" || cfg.SongDB.WebURL != "" {
		server.lookup = songdb.NewLookup(cfg.SongDB.APIURL, cfg.SongDB.WebURL)
	}

	router := gin.Default()
	server.setupRoutes(router)
	server.router = router
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.health)

	api := router.Group("/api/v1")
	{
		api.POST("/groups", s.createGroup)
		api.GET("/groups", s.listGroups)
		api.GET("/groups/:groupId", s.getGroup)
		api.PUT("/groups/:groupId", s.renameGroup)
		api.GET("/groups/:groupId/events", s.groupEvents)

		api.POST("/groups/:groupId/members", s.addMember)
		api.GET("/groups/:groupId/members", s.listMembers)
		api.GET("/groups/:groupId/members/:memberId", s.getMember)
		api.PUT("/groups/:groupId/members/:memberId", s.updateMember)
		api.DELETE("/groups/:groupId/members/:memberId", s.removeMember)

		api.GET("/groups/:groupId/members/:memberId/notifications", s.listNotifications)
		api.POST("/groups/:groupId/members/:memberId/notifications/read-all", s.markAllNotificationsRead)
		api.POST("/groups/:groupId/members/:memberId/notifications/:notificationId/read", s.markNotificationRead)

		api.POST("/groups/:groupId/tasks", s.createTask)
		api.GET("/groups/:groupId/tasks", s.listTasks)
		api.GET("/groups/:groupId/tasks/:taskId", s.getTask)
		api.PUT("/groups/:groupId/tasks/:taskId", s.updateTask)
		api.DELETE("/groups/:groupId/tasks/:taskId", s.deleteTask)
		api.POST("/groups/:groupId/tasks/:taskId/complete", s.completeTask)

		api.POST("/groups/:groupId/setlists", s.createSetlist)
		api.GET("/groups/:groupId/setlists", s.listSetlists)
		api.GET("/groups/:groupId/setlists/:setlistId", s.getSetlist)
		api.PUT("/groups/:groupId/setlists/:setlistId", s.updateSetlist)
		api.DELETE("/groups/:groupId/setlists/:setlistId", s.deleteSetlist)
		api.POST("/groups/:groupId/setlists/:setlistId/songs", s.addSong)
		api.PUT("/groups/:groupId/setlists/:setlistId/songs/:songId", s.updateSong)
		api.DELETE("/groups/:groupId/setlists/:setlistId/songs/:songId", s.removeSong)
		api.PUT("/groups/:groupId/setlists/:setlistId/songs/:songId/start-time", s.setSongStart)
		api.POST("/groups/:groupId/setlists/:setlistId/reorder", s.reorderSongs)
		api.POST("/groups/:groupId/setlists/:setlistId/import", s.importSongs)
		api.POST("/groups/:groupId/setlists/:setlistId/schedule", s.scheduleSetlist)
		api.POST("/groups/:groupId/setlists/:setlistId/export", s.exportSetlist)

		api.GET("/exports", s.listExports)
		api.GET("/exports/:id", s.getExportStatus)
		api.POST("/exports/:id/cancel", s.cancelExport)
		api.GET("/exports/:id/download", s.downloadExport)

		api.POST("/groups/:groupId/merch", s.createMerchItem)
		api.GET("/groups/:groupId/merch", s.listMerchItems)
		api.GET("/groups/:groupId/merch/:itemId", s.getMerchItem)
		api.PUT("/groups/:groupId/merch/:itemId", s.updateMerchItem)
		api.DELETE("/groups/:groupId/merch/:itemId", s.deleteMerchItem)
		api.POST("/groups/:groupId/sales", s.recordSale)
		api.GET("/groups/:groupId/sales", s.listSales)

		api.POST("/groups/:groupId/finance", s.createFinanceEntry)
		api.GET("/groups/:groupId/finance", s.listFinanceEntries)
		api.GET("/groups/:groupId/finance/summary", s.financeSummary)
		api.POST("/groups/:groupId/finance/scan", s.scanReceipt)
		api.POST("/groups/:groupId/finance/scan/entry", s.createEntryFromScan)
		api.GET("/groups/:groupId/finance/:entryId", s.getFinanceEntry)
		api.PUT("/groups/:groupId/finance/:entryId", s.updateFinanceEntry)
		api.DELETE("/groups/:groupId/finance/:entryId", s.deleteFinanceEntry)

		api.GET("/songdb/search", s.searchSongDB)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}
