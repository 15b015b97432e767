package controllers

import (
	"net/http"

	"github.com/fundraisely/bingo-server/game"
	"github.com/fundraisely/bingo-server/models"
	"github.com/fundraisely/bingo-server/services"
	"github.com/gin-gonic/gin"
)

// ListRooms returns a snapshot of every open room.
func ListRooms(registry *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms := registry.GetAllRooms()
		views := make([]models.RoomView, 0, len(rooms))
		for _, room := range rooms {
			views = append(views, registry.SerializeRoom(room))
		}
		c.JSON(http.StatusOK, gin.H{"rooms": views})
	}
}

// GetRoom returns one room plus its live game state, if a game is running.
func GetRoom(registry *services.Registry, engine *game.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		room, ok := registry.GetRoom(code)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}

		resp := gin.H{"room": registry.SerializeRoom(room)}
		if snapshot, running := engine.Snapshot(code); running {
			resp["game"] = snapshot
		}
		c.JSON(http.StatusOK, resp)
	}
}
