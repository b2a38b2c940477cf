// Package app wires the room table to the external delivery provider:
// publish validation, the inactivity state machine, channel authorization
// and request admission.
package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"gameroom/internal/core"
	"gameroom/internal/domain"
)

// Publisher forwards one event to the delivery provider. Owned by the
// adapter; delivery is best-effort, at most once.
type Publisher interface {
	Trigger(channel, event string, data map[string]any) error
}

var ErrUnknownEvent = errors.New("unrecognized event")

const channelPrefix = "presence-game-"

// ChannelFor names the room's logical broadcast channel.
func ChannelFor(code domain.RoomCode) string {
	return channelPrefix + string(code)
}

// Gateway validates publish requests and fans them out through the
// provider on the room's channel.
type Gateway struct {
	store     *core.Store
	publisher Publisher
	catalog   *domain.EventCatalog
}

func NewGateway(store *core.Store, publisher Publisher, catalog *domain.EventCatalog) *Gateway {
	return &Gateway{store: store, publisher: publisher, catalog: catalog}
}

// Publish checks the event against the room's catalog, resets the activity
// clock unless the event is itself an inactivity notice, then forwards it.
// A provider failure does not roll back the activity reset.
func (g *Gateway) Publish(code domain.RoomCode, event string, data map[string]any) error {
	room, ok := g.store.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	kind, ok := g.catalog.Lookup(room.GameType, event)
	if !ok {
		return fmt.Errorf("%w: %q for game type %q", ErrUnknownEvent, event, room.GameType)
	}
	if data == nil {
		data = map[string]any{}
	}
	if !kind.InactivityNotice {
		g.store.ResetActivity(code)
	}
	if err := g.publisher.Trigger(ChannelFor(code), event, data); err != nil {
		log.Error().Err(err).Str("module", "app.gateway").Str("code", string(code)).Str("event", event).Msg("delivery failed")
		return fmt.Errorf("deliver %q: %w", event, err)
	}
	log.Debug().Str("module", "app.gateway").Str("code", string(code)).Str("event", event).Msg("event published")
	return nil
}
