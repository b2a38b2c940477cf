package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gameroom/internal/app"
	"gameroom/internal/domain"
)

type broadcastRequest struct {
	RoomCode string         `json:"roomCode" binding:"required"`
	Event    string         `json:"event" binding:"required"`
	Data     map[string]any `json:"data"`
}

// Broadcast is rate-limited before anything else runs, so a rejected
// request has no side effects at all.
func (h *Handler) Broadcast(c *gin.Context) {
	if !h.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}

	var req broadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.gateway.Publish(domain.NormalizeCode(req.RoomCode), req.Event, req.Data)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case errors.Is(err, app.ErrUnknownEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		// the caller cannot safely retry without duplicating game state
		log.Error().Err(err).Str("module", "adapters.http").Str("code", req.RoomCode).Msg("broadcast failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deliver event"})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// RunInactivityCheck runs one sweep. Bearer-protected: this mutates and
// deletes rooms.
func (h *Handler) RunInactivityCheck(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.sweepToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	report := h.monitor.Sweep(time.Now())
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"report":     report,
		"thresholds": app.Thresholds(),
	})
}

// InactivityStatus is the unauthenticated probe: counts only, no mutation.
func (h *Handler) InactivityStatus(c *gin.Context) {
	lists := h.monitor.Partition(time.Now())
	c.JSON(http.StatusOK, gin.H{
		"rooms":              h.store.Len(),
		"needsFirstWarning":  len(lists.NeedsFirstWarning),
		"needsSecondWarning": len(lists.NeedsSecondWarning),
		"needsTimeout":       len(lists.NeedsTimeout),
		"needsExpire":        len(lists.NeedsExpire),
		"thresholds":         app.Thresholds(),
	})
}
