package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/slacksum-agent/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/health", handler.Health)

	protected := router.Group("/")
	protected.Use(staticTokenMiddleware(cfg.HTTP.AuthToken))
	{
		protected.POST("/api/agent", handler.Process)
		protected.GET("/api/agent/context", handler.Context)
		protected.POST("/send-notification", handler.SendNotification)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
