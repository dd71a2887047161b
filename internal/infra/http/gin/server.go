package ginserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"linkup/internal/infra/config"
	"linkup/internal/infra/obs"
)

// RoomsHTTP exposes the synced room list to the UI layer.
type RoomsHTTP interface {
	List(c *gin.Context)
	NextPage(c *gin.Context)
	Refresh(c *gin.Context)
	SetSearch(c *gin.Context)
	SetTab(c *gin.Context)
	UnreadCount(c *gin.Context)
	Create(c *gin.Context)
	Join(c *gin.Context)
	Leave(c *gin.Context)
	Update(c *gin.Context)
	MarkRead(c *gin.Context)
	MarkAllRead(c *gin.Context)
}

// Handlers groups the HTTP surfaces mounted on the server.
type Handlers struct {
	Rooms RoomsHTTP
}

// NewServer assembles the gin router with observability middleware, health
// endpoints and the room-list API.
func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Rooms != nil {
		api.GET("/rooms", h.Rooms.List)
		api.POST("/rooms/next-page", h.Rooms.NextPage)
		api.POST("/rooms/refresh", h.Rooms.Refresh)
		api.PUT("/rooms/search", h.Rooms.SetSearch)
		api.PUT("/rooms/tab", h.Rooms.SetTab)
		api.GET("/rooms/unread-count", h.Rooms.UnreadCount)
		api.POST("/rooms", h.Rooms.Create)
		api.PUT("/rooms/join", h.Rooms.Join)
		api.DELETE("/rooms/:id", h.Rooms.Leave)
		api.PUT("/rooms/:id", h.Rooms.Update)
		api.PUT("/rooms/:id/read", h.Rooms.MarkRead)
		api.PUT("/rooms/read-all", h.Rooms.MarkAllRead)
	}

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func configureGinMode(env string) string {
	switch env {
	case "dev", "local":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.Mode()
}
