package main

import (
	"time"

	"codeberg.org/finpal/server/api/rest/aiusage"
	"codeberg.org/finpal/server/api/rest/health"
	"codeberg.org/finpal/server/internal/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(RequestLogger(), CORSMiddleware(server.config.AllowedOrigins))
	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.store.Backend, server.store.Ping))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(server.registry, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		aiusage.RegisterRoutes(v1, server.limiter, server.config.JWTSecret, server.throttle)
	}
}

// attaches a request-scoped logger carrying the request id
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Header("X-Request-ID", requestID)

		scoped := logger.With("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), scoped))

		c.Next()
	}
}

// allows the dashboard origins to call the API with bearer tokens
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowOrigins = allowedOrigins
	}

	return cors.New(cfg)
}
