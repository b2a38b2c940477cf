package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameroom/internal/app"
	"gameroom/internal/core"
	"gameroom/internal/domain"
)

const testSweepToken = "sweep-secret"

type fakePublisher struct {
	events []string
	err    error
}

func (f *fakePublisher) Trigger(channel, event string, data map[string]any) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeAuthorizer struct{}

func (fakeAuthorizer) AuthorizePresenceChannel(params []byte, member app.PresenceMember) ([]byte, error) {
	return []byte(`{"auth":"presence","channel_data":"{}"}`), nil
}

func (fakeAuthorizer) AuthorizePrivateChannel(params []byte) ([]byte, error) {
	return []byte(`{"auth":"private"}`), nil
}

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) bool { return false }

type env struct {
	router *gin.Engine
	store  *core.Store
	pub    *fakePublisher
	clock  *time.Time
}

func newEnv(limiter app.Limiter) *env {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	clock := &now
	store := core.NewStoreWithClock(func() time.Time { return *clock })
	registry := core.NewRegistry()
	pub := &fakePublisher{}
	gateway := app.NewGateway(store, pub, domain.NewEventCatalog())
	monitor := app.NewMonitor(store, gateway)
	authority := app.NewAuthority(fakeAuthorizer{})
	if limiter == nil {
		limiter = app.NewAllowAllLimiter()
	}
	h := NewHandler(store, registry, monitor, gateway, authority, limiter, testSweepToken)
	return &env{router: SetupRouter("test", h), store: store, pub: pub, clock: clock}
}

func (e *env) createRoom(t *testing.T, maxPlayers int) domain.Room {
	t.Helper()
	return e.store.Create(core.CreateParams{
		GameType:   domain.GameTrivia,
		Name:       "quiz night",
		HostID:     "host-1",
		HostName:   "Sam",
		MaxPlayers: maxPlayers,
	})
}

func (e *env) doJSON(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestConnectionsLifecycle(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)

	w := e.doJSON("POST", "/connections", gin.H{"action": "connect", "roomCode": string(room.Code), "playerId": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["connectedCount"])
	assert.EqualValues(t, 8, body["capacity"])

	w = e.doJSON("POST", "/connections", gin.H{"action": "disconnect", "roomCode": string(room.Code), "playerId": "p1"})
	body = decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 0, body["connectedCount"])

	w = e.doJSON("POST", "/connections", gin.H{"action": "ping", "playerId": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConnectionsWaitingRoomScenario(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)

	// 4 seats means 8 connection slots
	for i := 0; i < 8; i++ {
		w := e.doJSON("POST", "/connections", gin.H{"action": "connect", "roomCode": string(room.Code), "playerId": fmt.Sprintf("p%d", i)})
		body := decode(t, w)
		require.Equal(t, true, body["success"], "connection %d", i)
	}

	w := e.doJSON("POST", "/connections", gin.H{"action": "connect", "roomCode": string(room.Code), "playerId": "p8"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["inWaitingRoom"])
	assert.EqualValues(t, 1, body["position"])
}

func TestConnectionsValidation(t *testing.T) {
	e := newEnv(nil)

	w := e.doJSON("POST", "/connections", gin.H{"action": "teleport", "playerId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.doJSON("POST", "/connections", gin.H{"action": "connect", "playerId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "connect without a room code")

	w = e.doJSON("POST", "/connections", gin.H{"action": "connect", "roomCode": "ZZZZ", "playerId": "p1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRoomEndpoint(t *testing.T) {
	e := newEnv(nil)

	w := e.doJSON("POST", "/rooms", gin.H{
		"gameType":        "trivia",
		"roomName":        "quiz night",
		"hostId":          "host-1",
		"hostName":        "Sam",
		"meetingUrl":      "https://example.com/j/123",
		"meetingPassword": "hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	room := body["room"].(map[string]any)
	assert.Len(t, room["code"].(string), domain.CodeLength)
	assert.EqualValues(t, domain.DefaultMaxPlayers, room["maxPlayers"])
	assert.Equal(t, "hunter2", room["meetingPassword"], "the creator gets the password back")

	w = e.doJSON("POST", "/rooms", gin.H{"gameType": "trivia"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoomProjection(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)
	e.store.Update(room.Code, core.Update{MeetingPassword: ptr("hunter2")})

	w := e.doJSON("GET", "/rooms/"+strings.ToLower(string(room.Code)), nil)
	require.Equal(t, http.StatusOK, w.Code, "codes are case-normalized at the boundary")
	body := decode(t, w)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["canJoin"])
	view := body["room"].(map[string]any)
	assert.NotContains(t, view, "meetingPassword", "public projection hides the password")

	w = e.doJSON("GET", "/rooms/ZZZZ", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["exists"])
}

func TestRoomJoinUntilFull(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 2) // host seat + one free

	w := e.doJSON("POST", "/rooms/"+string(room.Code), gin.H{"action": "join", "playerId": "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])

	w = e.doJSON("POST", "/rooms/"+string(room.Code), gin.H{"action": "join", "playerId": "p2"})
	require.Equal(t, http.StatusOK, w.Code, "a full room is an expected outcome, not an HTTP error")
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "room is full", body["error"])
}

func TestRoomStatusUpdate(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)

	w := e.doJSON("POST", "/rooms/"+string(room.Code), gin.H{"action": "update-status", "status": "playing"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.doJSON("POST", "/rooms/"+string(room.Code), gin.H{"action": "update-status", "status": "lobby"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "no back-transitions")

	w = e.doJSON("POST", "/rooms/"+string(room.Code), gin.H{"action": "leave"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.doJSON("POST", "/rooms/ZZZZ", gin.H{"action": "join"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBroadcastHappyPath(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)

	w := e.doJSON("POST", "/game/broadcast", gin.H{
		"roomCode": string(room.Code),
		"event":    "player-buzzed",
		"data":     gin.H{"playerId": "p1"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"player-buzzed"}, e.pub.events)
}

func TestBroadcastErrorMapping(t *testing.T) {
	e := newEnv(nil)
	room := e.createRoom(t, 4)

	w := e.doJSON("POST", "/game/broadcast", gin.H{"roomCode": "ZZZZ", "event": "player-buzzed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.doJSON("POST", "/game/broadcast", gin.H{"roomCode": string(room.Code), "event": "no-such-event"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	e.pub.err = errors.New("provider down")
	w = e.doJSON("POST", "/game/broadcast", gin.H{"roomCode": string(room.Code), "event": "player-buzzed"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestBroadcastRateLimited(t *testing.T) {
	e := newEnv(denyLimiter{})
	room := e.createRoom(t, 4)
	before, _ := e.store.Get(room.Code)

	*e.clock = e.clock.Add(time.Minute)
	w := e.doJSON("POST", "/game/broadcast", gin.H{"roomCode": string(room.Code), "event": "player-buzzed"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, e.pub.events, "a rejected request publishes nothing")

	got, _ := e.store.Get(room.Code)
	assert.Equal(t, before.LastActivity, got.LastActivity, "and resets no activity")
}

func TestInactivityCheckAuth(t *testing.T) {
	e := newEnv(nil)
	e.createRoom(t, 4)
	*e.clock = e.clock.Add(12 * time.Minute)

	req := httptest.NewRequest("POST", "/game/inactivity-check", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing bearer token")

	req = httptest.NewRequest("POST", "/game/inactivity-check", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInactivityCheckSweep(t *testing.T) {
	e := newEnv(nil)
	fresh := e.createRoom(t, 4)

	// the handler sweeps with the real clock, so backdate the room instead
	*e.clock = time.Now().Add(-12 * time.Minute)
	stale := e.createRoom(t, 4)

	req := httptest.NewRequest("POST", "/game/inactivity-check", nil)
	req.Header.Set("Authorization", "Bearer "+testSweepToken)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	report := body["report"].(map[string]any)
	assert.EqualValues(t, 1, report["firstWarnings"], "only the stale room is warned")

	staleRoom, _ := e.store.Get(stale.Code)
	assert.Equal(t, domain.WarningFirst, staleRoom.WarningSent)
	freshRoom, _ := e.store.Get(fresh.Code)
	assert.Equal(t, domain.WarningNone, freshRoom.WarningSent)
	thresholds := body["thresholds"].(map[string]any)
	assert.EqualValues(t, 10, thresholds["firstWarningMinutes"])
}

func TestInactivityStatusProbeDoesNotMutate(t *testing.T) {
	e := newEnv(nil)
	*e.clock = time.Now().Add(-12 * time.Minute)
	room := e.createRoom(t, 4)

	w := e.doJSON("GET", "/game/inactivity-check", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["needsFirstWarning"])

	got, _ := e.store.Get(room.Code)
	assert.Equal(t, domain.WarningNone, got.WarningSent, "the probe flags nothing")
	assert.Empty(t, e.pub.events)
}

func TestPusherAuthEndpoint(t *testing.T) {
	e := newEnv(nil)

	do := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/pusher/auth", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		return w
	}

	w := do("socket_id=1.1&channel_name=presence-game-ABCD")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "presence")

	w = do("socket_id=1.1&channel_name=private-host-ABCD")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do("socket_id=1.1&channel_name=public-game-ABCD")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do("channel_name=presence-game-ABCD")
	assert.Equal(t, http.StatusBadRequest, w.Code, "socket_id is required")
}

func ptr[T any](v T) *T { return &v }
