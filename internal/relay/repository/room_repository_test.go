package repository

import (
	"fmt"
	"sync"
	"testing"

	errprocess "websocket_relay_service/pkg/err"

	"github.com/stretchr/testify/assert"
)

func TestRoomRepository_JoinRequiresRoomID(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)

	_, err := rooms.Join("", "conn-1", "alice", nil)
	assert.Error(t, err)
	assert.Equal(t, errprocess.KindInvalidArgument, errprocess.KindOf(err))
}

func TestRoomRepository_JoinCreatesRoomAndMirrors(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")

	room, err := rooms.Join("room-1", "conn-1", "alice", map[string]interface{}{"x": 1})
	assert.NoError(t, err)
	assert.Equal(t, "room-1", room.ID)
	assert.Len(t, room.Members, 1)
	assert.Equal(t, "conn-1", room.Members["alice"].ConnectionID)
	assert.Equal(t, 1, room.Members["alice"].UserData["x"])

	assert.ElementsMatch(t, []string{"room-1"}, conns.RoomIDs("conn-1"))
	assert.Equal(t, 1, conns.CountByRoom("room-1"))
}

func TestRoomRepository_JoinWithoutUserIDFallsBackToConnectionID(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")

	room, err := rooms.Join("room-1", "conn-1", "", nil)
	assert.NoError(t, err)
	assert.Equal(t, "conn-1", room.Members["conn-1"].UserID)
}

func TestRoomRepository_LastJoinWins(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")
	conns.Add("conn-2")

	_, err := rooms.Join("room-1", "conn-1", "alice", nil)
	assert.NoError(t, err)
	room, err := rooms.Join("room-1", "conn-2", "alice", nil)
	assert.NoError(t, err)

	// one membership, bound to the newer connection
	assert.Len(t, room.Members, 1)
	assert.Equal(t, "conn-2", room.Members["alice"].ConnectionID)

	// the superseded connection's mirror entry is cleared
	assert.Empty(t, conns.RoomIDs("conn-1"))
	assert.ElementsMatch(t, []string{"room-1"}, conns.RoomIDs("conn-2"))
}

func TestRoomRepository_LeaveDeletesEmptyRoom(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")

	_, err := rooms.Join("room-1", "conn-1", "alice", nil)
	assert.NoError(t, err)

	userID, removed := rooms.Leave("room-1", "conn-1")
	assert.True(t, removed)
	assert.Equal(t, "alice", userID)

	_, ok := rooms.Get("room-1")
	assert.False(t, ok)
	assert.Empty(t, rooms.All())
	assert.Empty(t, conns.RoomIDs("conn-1"))

	// leaving again, or leaving an unknown room, is a no-op
	_, removed = rooms.Leave("room-1", "conn-1")
	assert.False(t, removed)
	_, removed = rooms.Leave("no-such-room", "conn-1")
	assert.False(t, removed)
}

func TestRoomRepository_LeaveKeepsPopulatedRoom(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")
	conns.Add("conn-2")

	rooms.Join("room-1", "conn-1", "alice", nil)
	rooms.Join("room-1", "conn-2", "bob", nil)

	_, removed := rooms.Leave("room-1", "conn-1")
	assert.True(t, removed)

	room, ok := rooms.Get("room-1")
	assert.True(t, ok)
	assert.Len(t, room.Members, 1)
	assert.Equal(t, "conn-2", room.Members["bob"].ConnectionID)
}

func TestRoomRepository_HandleDisconnect(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")
	conns.Add("conn-2")

	rooms.Join("room-a", "conn-1", "alice", nil)
	rooms.Join("room-b", "conn-1", "alice", nil)
	rooms.Join("room-a", "conn-2", "bob", nil)

	roomIDs := conns.RoomIDs("conn-1")
	conns.Remove("conn-1")
	departures := rooms.HandleDisconnect("conn-1", roomIDs)

	assert.Len(t, departures, 2)
	for _, d := range departures {
		assert.Equal(t, "alice", d.UserID)
	}

	roomA, ok := rooms.Get("room-a")
	assert.True(t, ok)
	assert.Len(t, roomA.Members, 1)

	_, ok = rooms.Get("room-b")
	assert.False(t, ok)
}

func TestRoomRepository_StatsAndSnapshots(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)
	conns.Add("conn-1")
	conns.Add("conn-2")

	rooms.Join("room-1", "conn-1", "alice", nil)
	rooms.Join("room-1", "conn-2", "bob", nil)

	stats := rooms.Stats()
	assert.Len(t, stats, 1)
	assert.Equal(t, 2, stats["room-1"].UserCount)

	// snapshots do not alias the stored room
	room, _ := rooms.Get("room-1")
	delete(room.Members, "alice")
	stored, _ := rooms.Get("room-1")
	assert.Len(t, stored.Members, 2)
}

func TestRoomRepository_ConcurrentJoinLeave(t *testing.T) {
	conns := NewMemoryConnectionRepository()
	rooms := NewMemoryRoomRepository(conns)

	const workers = 10
	for i := 0; i < workers; i++ {
		conns.Add(fmt.Sprintf("conn-%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", i)
			userID := fmt.Sprintf("user-%d", i)
			for j := 0; j < 50; j++ {
				_, err := rooms.Join("room-1", connID, userID, nil)
				assert.NoError(t, err)
				rooms.Leave("room-1", connID)
			}
		}(i)
	}
	wg.Wait()

	// every membership was paired with a leave, so nothing survives
	assert.Empty(t, rooms.All())
	for i := 0; i < workers; i++ {
		assert.Empty(t, conns.RoomIDs(fmt.Sprintf("conn-%d", i)))
	}
}
