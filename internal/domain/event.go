package domain

// Event names shared by every game type.
const (
	EventPlayerJoined      = "player-joined"
	EventPlayerLeft        = "player-left"
	EventStatusChanged     = "status-changed"
	EventHostMessage       = "host-message"
	EventInactivityWarning = "inactivity-warning"
	EventRoomTimedOut      = "room-timed-out"
	EventRoomExpired       = "room-expired"
)

// Game types with their own event extensions.
const (
	GameTrivia  GameType = "trivia"
	GameDrawing GameType = "drawing"
)

// EventKind is one recognized realtime event. The set of kinds is closed:
// a publish request naming anything outside the catalog is rejected.
type EventKind struct {
	Name string
	// InactivityNotice marks kinds the inactivity monitor itself emits.
	// Publishing one must not reset the room's activity clock, otherwise
	// warnings would keep their own room alive forever.
	InactivityNotice bool
}

var baseEvents = []EventKind{
	{Name: EventPlayerJoined},
	{Name: EventPlayerLeft},
	{Name: EventStatusChanged},
	{Name: EventHostMessage},
	{Name: EventInactivityWarning, InactivityNotice: true},
	{Name: EventRoomTimedOut, InactivityNotice: true},
	{Name: EventRoomExpired, InactivityNotice: true},
}

var gameEvents = map[GameType][]EventKind{
	GameTrivia: {
		{Name: "player-buzzed"},
		{Name: "buzzer-reset"},
		{Name: "answer-submitted"},
		{Name: "question-advanced"},
	},
	GameDrawing: {
		{Name: "stroke-added"},
		{Name: "canvas-cleared"},
		{Name: "word-guessed"},
	},
}

// EventCatalog resolves an event name for a given game type: the base set
// plus that game's extension set. Rooms of unlisted game types get the
// base set only.
type EventCatalog struct {
	base   map[string]EventKind
	byGame map[GameType]map[string]EventKind
}

func NewEventCatalog() *EventCatalog {
	c := &EventCatalog{
		base:   make(map[string]EventKind, len(baseEvents)),
		byGame: make(map[GameType]map[string]EventKind, len(gameEvents)),
	}
	for _, k := range baseEvents {
		c.base[k.Name] = k
	}
	for gt, kinds := range gameEvents {
		m := make(map[string]EventKind, len(kinds))
		for _, k := range kinds {
			m[k.Name] = k
		}
		c.byGame[gt] = m
	}
	return c
}

func (c *EventCatalog) Lookup(gt GameType, name string) (EventKind, bool) {
	if m, ok := c.byGame[gt]; ok {
		if k, ok := m[name]; ok {
			return k, true
		}
	}
	k, ok := c.base[name]
	return k, ok
}
