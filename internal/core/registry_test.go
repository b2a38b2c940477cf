package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameroom/internal/domain"
)

const room = domain.RoomCode("ABCD")

func TestConnectFillsToCapacity(t *testing.T) {
	r := NewRegistry()

	// a 4-seat room carries 8 connection slots (domain.Room.MaxConnections)
	for i := 0; i < 8; i++ {
		res := r.Connect(room, domain.PlayerID(fmt.Sprintf("p%d", i)), 8)
		require.True(t, res.Admitted, "connection %d should be admitted", i)
		assert.Equal(t, i+1, res.Count)
		assert.Equal(t, 8, res.Capacity)
	}

	res := r.Connect(room, "p8", 8)
	assert.False(t, res.Admitted)
	assert.True(t, res.InWaitingRoom)
	assert.Equal(t, 1, res.Position)
	assert.Equal(t, 8, r.Count(room), "a queued attempt mutates nothing")
}

func TestConnectIsIdempotent(t *testing.T) {
	r := NewRegistry()

	first := r.Connect(room, "alice", 2)
	again := r.Connect(room, "alice", 2)

	assert.True(t, again.Admitted)
	assert.Equal(t, first.Count, again.Count)
	assert.False(t, again.InWaitingRoom)
}

func TestReconnectAdmittedEvenWhenFull(t *testing.T) {
	r := NewRegistry()
	r.Connect(room, "a", 2)
	r.Connect(room, "b", 2) // now full

	res := r.Connect(room, "a", 2)
	assert.True(t, res.Admitted, "existing member reconnects past a full room")
	assert.Equal(t, 2, res.Count)
}

func TestDisconnectFreesSlot(t *testing.T) {
	r := NewRegistry()
	r.Connect(room, "a", 2)
	r.Connect(room, "b", 2)

	queued := r.Connect(room, "c", 2)
	require.True(t, queued.InWaitingRoom)

	remaining := r.Disconnect(room, "a")
	assert.Equal(t, 1, remaining)

	res := r.Connect(room, "c", 2)
	assert.True(t, res.Admitted, "waiting room drains once a slot frees")
}

func TestDisconnectPrunesEmptySet(t *testing.T) {
	r := NewRegistry()
	r.Connect(room, "a", 8)
	r.Disconnect(room, "a")

	assert.Zero(t, r.Count(room))
	_, tracked := r.members[room]
	assert.False(t, tracked, "emptied rooms leave no registry entry behind")

	assert.Zero(t, r.Disconnect(room, "ghost"), "disconnecting from an untracked room is a no-op")
}
