package server

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/edgard/construfacil/internal/logger"
	"github.com/edgard/construfacil/internal/server/handlers"
)

// NewRouter builds the gin engine with every route of the backend.
func NewRouter(deps handlers.HandlerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(deps.Logger))
	r.Use(cors.New(corsConfig(deps.Config.Server.AllowedOrigins)))
	r.Use(handlers.ErrorHandler())

	r.GET("/health", handlers.NewHealthHandler(deps))
	r.GET("/ws", handlers.NewChatSocketHandler(deps))

	api := r.Group("/api")
	{
		api.POST("/gemini", handlers.NewCompletionHandler(deps))

		professionals := api.Group("/professionals")
		{
			professionals.GET("", handlers.NewListProfessionalsHandler(deps))
			professionals.POST("", handlers.NewRegisterProfessionalHandler(deps))
			professionals.DELETE("/:ownerId", handlers.NewDeleteProfessionalHandler(deps))
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", logger.RequestIDHeader}
	cfg.ExposeHeaders = []string{"Content-Length", logger.RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
