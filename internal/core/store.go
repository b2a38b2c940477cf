package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"gameroom/internal/domain"
)

// Store is the authoritative in-memory room table. Every check-and-mutate
// sequence (capacity, status transition) runs under the write lock, so
// concurrent requests on the same code cannot overshoot.
//
// Rooms are handed out by value; callers never see the map's pointers.
type Store struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*domain.Room
	now   func() time.Time
}

func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock injects the time source for timestamping.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{rooms: make(map[domain.RoomCode]*domain.Room), now: now}
}

// CreateParams carries the host-supplied fields for a new room.
type CreateParams struct {
	GameType        domain.GameType
	Name            string
	HostID          domain.PlayerID
	HostName        string
	Public          bool
	MeetingURL      string
	MeetingPassword string
	MaxPlayers      int
}

// Create allocates a fresh code and inserts the room. The host holds the
// first seat.
func (s *Store) Create(p CreateParams) domain.Room {
	if p.MaxPlayers <= 0 {
		p.MaxPlayers = domain.DefaultMaxPlayers
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	code := domain.NewRoomCode()
	for _, taken := s.rooms[code]; taken; _, taken = s.rooms[code] {
		code = domain.NewRoomCode()
	}
	now := s.now()
	room := &domain.Room{
		Code:            code,
		GameType:        p.GameType,
		Name:            p.Name,
		HostID:          p.HostID,
		HostName:        p.HostName,
		Public:          p.Public,
		MeetingURL:      p.MeetingURL,
		MeetingPassword: p.MeetingPassword,
		MaxPlayers:      p.MaxPlayers,
		PlayerCount:     1,
		Status:          domain.StatusLobby,
		CreatedAt:       now,
		LastActivity:    now,
	}
	s.rooms[code] = room
	log.Info().Str("module", "core.store").Str("code", string(code)).Str("game", string(p.GameType)).Msg("room created")
	return *room
}

func (s *Store) Get(code domain.RoomCode) (domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if room, ok := s.rooms[code]; ok {
		return *room, true
	}
	return domain.Room{}, false
}

// Join takes a seat. The capacity check and the increment share one
// critical section.
func (s *Store) Join(code domain.RoomCode) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if room.PlayerCount >= room.MaxPlayers {
		return domain.Room{}, domain.ErrRoomFull
	}
	room.PlayerCount++
	room.LastActivity = s.now()
	return *room, nil
}

// Leave gives a seat back. Best-effort: unknown rooms and empty rooms are
// both no-ops.
func (s *Store) Leave(code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return
	}
	if room.PlayerCount > 0 {
		room.PlayerCount--
	}
	room.LastActivity = s.now()
}

// Update is a partial update; nil fields are left untouched.
type Update struct {
	Status          *domain.RoomStatus
	Name            *string
	MaxPlayers      *int
	MeetingURL      *string
	MeetingPassword *string
}

func (s *Store) Update(code domain.RoomCode, upd Update) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	if upd.Status != nil {
		if !domain.ValidTransition(room.Status, *upd.Status) {
			return domain.Room{}, domain.ErrBadTransition
		}
		room.Status = *upd.Status
	}
	if upd.Name != nil {
		room.Name = *upd.Name
	}
	if upd.MaxPlayers != nil && *upd.MaxPlayers > 0 {
		room.MaxPlayers = *upd.MaxPlayers
	}
	if upd.MeetingURL != nil {
		room.MeetingURL = *upd.MeetingURL
	}
	if upd.MeetingPassword != nil {
		room.MeetingPassword = *upd.MeetingPassword
	}
	room.LastActivity = s.now()
	return *room, nil
}

func (s *Store) Delete(code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; ok {
		delete(s.rooms, code)
		log.Info().Str("module", "core.store").Str("code", string(code)).Msg("room deleted")
	}
}

// ResetActivity stamps the room as alive now. No-op for unknown codes.
func (s *Store) ResetActivity(code domain.RoomCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[code]; ok {
		room.LastActivity = s.now()
	}
}

// MarkWarning records a sent inactivity warning. Levels only move forward;
// a repeated sweep cannot lower or re-set one.
func (s *Store) MarkWarning(code domain.RoomCode, level domain.WarningLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[code]; ok && level > room.WarningSent {
		room.WarningSent = level
	}
}

// Rooms returns a snapshot of every room by value.
func (s *Store) Rooms() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, *room)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
