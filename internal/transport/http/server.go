package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/coderoom-server/internal/config"
	"github.com/vovakirdan/coderoom-server/internal/core"
	"github.com/vovakirdan/coderoom-server/internal/store"
)

// NewServer builds the HTTP server with REST and websocket routes. runs may
// be nil when the audit log is disabled.
func NewServer(hub *core.Hub, exec Executor, runs store.RunStore, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(hub, exec, runs, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewRouter builds the gin engine serving every route.
func NewRouter(hub *core.Hub, exec Executor, runs store.RunStore, cfg config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	api := NewAPIHandlers(exec, hub, runs, logger)
	router.GET("/", api.Root)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", api.Health)
		apiGroup.POST("/run", api.Run)
		apiGroup.GET("/runtimes", api.Runtimes)
		apiGroup.GET("/runs", api.Runs)
	}

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	return router
}
