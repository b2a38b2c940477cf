package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(mode string, h *Handler) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.POST("/connections", h.Connections)

	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms/:code", h.GetRoom)
	r.POST("/rooms/:code", h.RoomAction)

	game := r.Group("/game")
	game.POST("/broadcast", h.Broadcast)
	game.POST("/inactivity-check", h.RunInactivityCheck)
	game.GET("/inactivity-check", h.InactivityStatus)

	r.POST("/pusher/auth", h.PusherAuth)

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
