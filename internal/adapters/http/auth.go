package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gameroom/internal/app"
)

// PusherAuth is the provider's channel-authorization callback. The raw
// form body is what the provider's client signs, so it is read whole and
// parsed on the side.
func (h *Handler) PusherAuth(c *gin.Context) {
	params, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}
	form, err := url.ParseQuery(string(params))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed form body"})
		return
	}
	channel := form.Get("channel_name")
	if form.Get("socket_id") == "" || channel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "socket_id and channel_name are required"})
		return
	}

	resp, err := h.authority.Authorize(params, channel)
	if errors.Is(err, app.ErrInvalidChannel) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid channel type"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("channel", channel).Msg("channel authorization failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authorization failed"})
		return
	}
	c.Data(http.StatusOK, "application/json", resp)
}
