// Package http is the gin boundary: request parsing, error mapping and
// the route table. Handlers translate outcomes into the wire contract;
// all decisions live in app and core.
package http

import (
	"gameroom/internal/app"
	"gameroom/internal/core"
)

type Handler struct {
	store      *core.Store
	registry   *core.Registry
	monitor    *app.Monitor
	gateway    *app.Gateway
	authority  *app.Authority
	limiter    app.Limiter
	sweepToken string
}

func NewHandler(
	store *core.Store,
	registry *core.Registry,
	monitor *app.Monitor,
	gateway *app.Gateway,
	authority *app.Authority,
	limiter app.Limiter,
	sweepToken string,
) *Handler {
	return &Handler{
		store:      store,
		registry:   registry,
		monitor:    monitor,
		gateway:    gateway,
		authority:  authority,
		limiter:    limiter,
		sweepToken: sweepToken,
	}
}
