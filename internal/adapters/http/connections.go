package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gameroom/internal/domain"
)

type connectionRequest struct {
	Action     string `json:"action" binding:"required,oneof=connect disconnect ping"`
	RoomCode   string `json:"roomCode"`
	PlayerID   string `json:"playerId" binding:"required"`
	PlayerName string `json:"playerName"`
}

func (h *Handler) Connections(c *gin.Context) {
	var req connectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Action == "ping" {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	if req.RoomCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomCode is required"})
		return
	}
	code := domain.NormalizeCode(req.RoomCode)
	player := domain.PlayerID(req.PlayerID)

	switch req.Action {
	case "connect":
		room, ok := h.store.Get(code)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		res := h.registry.Connect(code, player, room.MaxConnections())
		if res.InWaitingRoom {
			c.JSON(http.StatusOK, gin.H{
				"success":       false,
				"inWaitingRoom": true,
				"position":      res.Position,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"connectedCount": res.Count,
			"capacity":       res.Capacity,
		})

	case "disconnect":
		count := h.registry.Disconnect(code, player)
		c.JSON(http.StatusOK, gin.H{"success": true, "connectedCount": count})
	}
}
