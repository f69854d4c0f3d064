package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/geodrop-server/internal/config"
	"github.com/vovakirdan/geodrop-server/internal/core"
	"github.com/vovakirdan/geodrop-server/internal/service/posts"
	"github.com/vovakirdan/geodrop-server/internal/store"
)

// ChatHub is the part of the core hub the transport needs.
type ChatHub interface {
	RegisterClient(c *core.Client)
	UnregisterClient(c *core.Client)
	Members(ctx context.Context, roomID string) ([]core.Member, error)
	RoomActivity(ctx context.Context) (map[string]int, error)
}

// PostService is the post collaborator used by the REST handlers.
type PostService interface {
	Create(ctx context.Context, in posts.CreateInput) (*store.Post, error)
	Get(ctx context.Context, id string) (*store.Post, error)
	List(ctx context.Context) ([]*store.Post, error)
	Love(ctx context.Context, id string) (*store.Post, error)
}

// NewServer builds the HTTP server with websocket, REST and upload routes.
func NewServer(hub ChatHub, postSvc PostService, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	router := NewRouter(hub, postSvc, cfg, logger)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter wires every route onto a gin engine.
func NewRouter(hub ChatHub, postSvc PostService, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	if cfg.MetricsEnabled {
		router.Use(MetricsMiddleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	postHandlers := NewPostHandlers(postSvc, cfg.MaxUploadBytes, logger)
	roomHandlers := NewRoomHandlers(hub, postSvc, logger)

	api := router.Group("/api")
	{
		api.GET("/posts", postHandlers.ListPosts)
		api.POST("/posts", postHandlers.CreatePost)
		api.GET("/posts/:id", postHandlers.GetPost)
		api.PUT("/posts/:id/love", postHandlers.LovePost)

		api.GET("/rooms", roomHandlers.ListRooms)
		api.GET("/rooms/:roomId", roomHandlers.GetRoom)
	}

	if cfg.UploadDir != "" && cfg.UploadBaseURL != "" {
		router.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
