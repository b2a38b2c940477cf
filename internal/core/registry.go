package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"gameroom/internal/domain"
)

// Registry tracks live network presence per room: every connected
// participant, spectators included. It is deliberately decoupled from the
// store's seat count, so a room can exist with zero connections.
type Registry struct {
	mu      sync.RWMutex
	members map[domain.RoomCode]map[domain.PlayerID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[domain.RoomCode]map[domain.PlayerID]struct{})}
}

// AdmitResult reports the outcome of a connection attempt.
type AdmitResult struct {
	Admitted      bool
	InWaitingRoom bool
	Position      int // 1-indexed queue position, set only when waiting
	Count         int
	Capacity      int
}

// Connect admits id into the room's presence set. capacity is the room's
// connection cap (domain.Room.MaxConnections); the policy lives there, not
// here. Reconnects are always admitted regardless of current size;
// overflow yields a waiting-room position and mutates nothing.
func (r *Registry) Connect(code domain.RoomCode, id domain.PlayerID, capacity int) AdmitResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[code]
	if ok {
		if _, present := set[id]; present {
			return AdmitResult{Admitted: true, Count: len(set), Capacity: capacity}
		}
		if len(set) >= capacity {
			pos := len(set) - capacity + 1
			log.Debug().Str("module", "core.registry").Str("code", string(code)).Int("position", pos).Msg("connection queued")
			return AdmitResult{InWaitingRoom: true, Position: pos, Count: len(set), Capacity: capacity}
		}
	} else {
		set = make(map[domain.PlayerID]struct{})
		r.members[code] = set
	}
	set[id] = struct{}{}
	log.Info().Str("module", "core.registry").Str("code", string(code)).Str("player", string(id)).Int("count", len(set)).Msg("connected")
	return AdmitResult{Admitted: true, Count: len(set), Capacity: capacity}
}

// Disconnect removes id and returns the remaining count. An emptied set is
// pruned so the registry does not accumulate entries for idle rooms.
func (r *Registry) Disconnect(code domain.RoomCode, id domain.PlayerID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.members[code]
	if !ok {
		return 0
	}
	delete(set, id)
	if len(set) == 0 {
		delete(r.members, code)
		return 0
	}
	return len(set)
}

func (r *Registry) Count(code domain.RoomCode) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[code])
}
