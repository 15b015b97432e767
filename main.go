package main

import (
	"net/http"
	"time"

	"github.com/fundraisely/bingo-server/config"
	"github.com/fundraisely/bingo-server/game"
	"github.com/fundraisely/bingo-server/routes"
	"github.com/fundraisely/bingo-server/services"
	"github.com/fundraisely/bingo-server/utils/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log := logger.Log

	// In-memory core: registry, engine, limiter, hub, dispatcher.
	registry := services.NewRegistry(log)
	engine := game.NewEngine(cfg.AutoPlayInterval, log)

	limiter := services.NewRateLimiter(log)
	limiter.StartSweeper(cfg.RateLimitSweepInterval, cfg.RateLimitMaxAge)
	defer limiter.Close()

	hub := services.NewHub(log)
	dispatcher := services.NewDispatcher(registry, engine, limiter, hub, log)

	r := gin.Default()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, registry, engine)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket endpoint
	r.GET("/ws", services.HandleWebSocket(hub, dispatcher))

	logger.Infof("Bingo room server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Errorf("[FATAL] Failed to start server: %v", err)
	}
}
