package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gameroom/internal/core"
	"gameroom/internal/domain"
)

type createRoomRequest struct {
	GameType        string `json:"gameType" binding:"required"`
	RoomName        string `json:"roomName" binding:"required,max=100"`
	HostID          string `json:"hostId" binding:"required"`
	HostName        string `json:"hostName"`
	IsPublic        bool   `json:"isPublic"`
	MeetingURL      string `json:"meetingUrl"`
	MeetingPassword string `json:"meetingPassword"`
	MaxPlayers      int    `json:"maxPlayers" binding:"omitempty,min=1,max=50"`
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := h.store.Create(core.CreateParams{
		GameType:        domain.GameType(req.GameType),
		Name:            req.RoomName,
		HostID:          domain.PlayerID(req.HostID),
		HostName:        req.HostName,
		Public:          req.IsPublic,
		MeetingURL:      req.MeetingURL,
		MeetingPassword: req.MeetingPassword,
		MaxPlayers:      req.MaxPlayers,
	})

	view := roomView(room)
	// the host gets the password back once; the public projection never has it
	view["meetingPassword"] = room.MeetingPassword
	c.JSON(http.StatusCreated, gin.H{"success": true, "room": view})
}

func (h *Handler) GetRoom(c *gin.Context) {
	code := domain.NormalizeCode(c.Param("code"))
	room, ok := h.store.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"exists": false, "error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":  true,
		"canJoin": room.CanJoin(),
		"room":    roomView(room),
	})
}

type roomActionRequest struct {
	Action   string `json:"action" binding:"required,oneof=join update-status leave"`
	PlayerID string `json:"playerId"`
	Status   string `json:"status" binding:"omitempty,oneof=lobby playing finished"`
}

func (h *Handler) RoomAction(c *gin.Context) {
	code := domain.NormalizeCode(c.Param("code"))

	var req roomActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Action {
	case "join":
		room, err := h.store.Join(code)
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, domain.ErrRoomFull):
			// expected, actionable outcome for the client, not an HTTP error
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "room is full"})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "room": roomView(room)})
		}

	case "update-status":
		if req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		status := domain.RoomStatus(req.Status)
		room, err := h.store.Update(code, core.Update{Status: &status})
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, domain.ErrBadTransition):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status transition"})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "room": roomView(room)})
		}

	case "leave":
		h.store.Leave(code)
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// roomView is the public projection; the meeting password stays out of it.
func roomView(r domain.Room) gin.H {
	return gin.H{
		"code":         r.Code,
		"gameType":     r.GameType,
		"name":         r.Name,
		"hostId":       r.HostID,
		"hostName":     r.HostName,
		"public":       r.Public,
		"meetingUrl":   r.MeetingURL,
		"maxPlayers":   r.MaxPlayers,
		"playerCount":  r.PlayerCount,
		"status":       r.Status,
		"createdAt":    r.CreatedAt,
		"lastActivity": r.LastActivity,
	}
}
