package app

import (
	"time"

	"github.com/rs/zerolog/log"

	"gameroom/internal/core"
	"gameroom/internal/domain"
)

// Staged inactivity thresholds. The first three measure time since the
// room's last activity; ExpireAfter measures absolute session age.
const (
	WarnAfter       = 10 * time.Minute
	SecondWarnAfter = 20 * time.Minute
	TimeoutAfter    = 30 * time.Minute
	ExpireAfter     = 90 * time.Minute
)

// Monitor derives which lifecycle action each room is due for. It holds no
// timers; callers drive it with an explicit clock, which also makes it
// testable without waiting.
type Monitor struct {
	store   *core.Store
	gateway *Gateway
}

func NewMonitor(store *core.Store, gateway *Gateway) *Monitor {
	return &Monitor{store: store, gateway: gateway}
}

// SweepLists partitions all rooms into disjoint work lists for one pass.
type SweepLists struct {
	NeedsFirstWarning  []domain.Room
	NeedsSecondWarning []domain.Room
	NeedsTimeout       []domain.Room
	NeedsExpire        []domain.Room
}

// Partition is read-only. A room old enough for both forced timeout and
// hard expiry lands only in the expire list: expiry is the absolute
// ceiling. Warning lists honor the per-room sent flags, so repeated calls
// at the same instant produce the same answer.
func (m *Monitor) Partition(now time.Time) SweepLists {
	var lists SweepLists
	for _, room := range m.store.Rooms() {
		age := now.Sub(room.CreatedAt)
		idle := now.Sub(room.LastActivity)
		switch {
		case age >= ExpireAfter:
			lists.NeedsExpire = append(lists.NeedsExpire, room)
		case idle >= TimeoutAfter:
			lists.NeedsTimeout = append(lists.NeedsTimeout, room)
		case idle >= SecondWarnAfter && room.WarningSent == domain.WarningFirst:
			lists.NeedsSecondWarning = append(lists.NeedsSecondWarning, room)
		case idle >= WarnAfter && room.WarningSent == domain.WarningNone:
			lists.NeedsFirstWarning = append(lists.NeedsFirstWarning, room)
		}
	}
	return lists
}

// SweepReport counts the actions applied by one sweep.
type SweepReport struct {
	Checked        int `json:"roomsChecked"`
	FirstWarnings  int `json:"firstWarnings"`
	SecondWarnings int `json:"secondWarnings"`
	TimedOut       int `json:"timedOut"`
	Expired        int `json:"expired"`
}

// Sweep applies every due action once. Warning flags and deletion make
// overlapping sweeps safe: a warned room is skipped by the next partition,
// a deleted room is simply gone.
func (m *Monitor) Sweep(now time.Time) SweepReport {
	report := SweepReport{Checked: m.store.Len()}
	lists := m.Partition(now)

	for _, room := range lists.NeedsFirstWarning {
		m.warn(room, now, 1)
		m.store.MarkWarning(room.Code, domain.WarningFirst)
		report.FirstWarnings++
	}
	for _, room := range lists.NeedsSecondWarning {
		m.warn(room, now, 2)
		m.store.MarkWarning(room.Code, domain.WarningSecond)
		report.SecondWarnings++
	}
	for _, room := range lists.NeedsTimeout {
		m.terminate(room, domain.EventRoomTimedOut, "closed due to inactivity")
		report.TimedOut++
	}
	for _, room := range lists.NeedsExpire {
		m.terminate(room, domain.EventRoomExpired, "session expired")
		report.Expired++
	}

	if report.FirstWarnings+report.SecondWarnings+report.TimedOut+report.Expired > 0 {
		log.Info().Str("module", "app.monitor").
			Int("first_warnings", report.FirstWarnings).
			Int("second_warnings", report.SecondWarnings).
			Int("timed_out", report.TimedOut).
			Int("expired", report.Expired).
			Msg("sweep applied actions")
	}
	return report
}

// warn is best-effort: a failed delivery still counts as sent, otherwise a
// flaky provider would spam warnings every sweep.
func (m *Monitor) warn(room domain.Room, now time.Time, level int) {
	idleMinutes := int(now.Sub(room.LastActivity).Minutes())
	err := m.gateway.Publish(room.Code, domain.EventInactivityWarning, map[string]any{
		"level":           level,
		"minutesInactive": idleMinutes,
		"closesInMinutes": int((TimeoutAfter - WarnAfter*time.Duration(level)).Minutes()),
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "app.monitor").Str("code", string(room.Code)).Int("level", level).Msg("warning delivery failed")
	}
}

// terminate announces the close while the room still exists, then deletes.
func (m *Monitor) terminate(room domain.Room, event, reason string) {
	err := m.gateway.Publish(room.Code, event, map[string]any{"reason": reason})
	if err != nil {
		log.Warn().Err(err).Str("module", "app.monitor").Str("code", string(room.Code)).Str("event", event).Msg("termination notice failed")
	}
	m.store.Delete(room.Code)
}

// Thresholds exposes the active configuration in minutes for the status
// endpoints.
func Thresholds() map[string]int {
	return map[string]int{
		"firstWarningMinutes":  int(WarnAfter.Minutes()),
		"secondWarningMinutes": int(SecondWarnAfter.Minutes()),
		"timeoutMinutes":       int(TimeoutAfter.Minutes()),
		"expireMinutes":        int(ExpireAfter.Minutes()),
	}
}
