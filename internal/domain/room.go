// Package domain contains entities without logic, just meta-data.
package domain

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"
)

type (
	RoomCode string
	GameType string
	PlayerID string
)

type RoomStatus string

const (
	StatusLobby    RoomStatus = "lobby"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// WarningLevel records which inactivity warnings a room already received.
type WarningLevel int

const (
	WarningNone WarningLevel = iota
	WarningFirst
	WarningSecond
)

const (
	CodeLength        = 4
	DefaultMaxPlayers = 8
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrBadTransition = errors.New("invalid status transition")
)

// Room is a single game session. Owned exclusively by the store;
// mutated only through its operations.
type Room struct {
	Code            RoomCode   `json:"code"`
	GameType        GameType   `json:"gameType"`
	Name            string     `json:"name"`
	HostID          PlayerID   `json:"hostId"`
	HostName        string     `json:"hostName"`
	Public          bool       `json:"public"`
	MeetingURL      string     `json:"meetingUrl,omitempty"`
	MeetingPassword string     `json:"-"`
	MaxPlayers      int        `json:"maxPlayers"`
	PlayerCount     int        `json:"playerCount"`
	Status          RoomStatus `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastActivity    time.Time  `json:"lastActivity"`
	WarningSent     WarningLevel
}

// CanJoin reports whether a new player may take a seat.
func (r *Room) CanJoin() bool {
	return r.Status == StatusLobby && r.PlayerCount < r.MaxPlayers
}

// MaxConnections is the live-presence cap, wider than the seat cap so
// spectators can watch a full game.
func (r *Room) MaxConnections() int {
	mp := r.MaxPlayers
	if mp < 1 {
		mp = 1
	}
	return mp * 2
}

// ValidTransition allows only lobby -> playing -> finished.
func ValidTransition(from, to RoomStatus) bool {
	switch from {
	case StatusLobby:
		return to == StatusLobby || to == StatusPlaying
	case StatusPlaying:
		return to == StatusPlaying || to == StatusFinished
	case StatusFinished:
		return to == StatusFinished
	}
	return false
}

// NormalizeCode uppercases a client-supplied room code before lookup.
func NormalizeCode(code string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// Ambiguous glyphs (0/O, 1/I) are excluded so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewRoomCode returns a short shareable code. Uniqueness is the store's
// problem; collisions are retried there.
func NewRoomCode() RoomCode {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // the OS entropy source is gone, nothing sane to do
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return RoomCode(buf)
}
