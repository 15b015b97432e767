package routes

import (
	"github.com/fundraisely/bingo-server/controllers"
	"github.com/fundraisely/bingo-server/game"
	"github.com/fundraisely/bingo-server/services"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, registry *services.Registry, engine *game.Engine) {
	api := r.Group("/api")

	// ----------------------
	// Room routes (read-only; mutation happens over the websocket)
	// ----------------------
	api.GET("/rooms", controllers.ListRooms(registry))
	api.GET("/rooms/:code", controllers.GetRoom(registry, engine))

	// ----------------------
	// Fee routes
	// ----------------------
	api.POST("/calculate-fees", controllers.CalculateFees)
}
