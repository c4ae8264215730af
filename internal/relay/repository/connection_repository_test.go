package repository

import (
	"testing"

	"websocket_relay_service/internal/relay/domain"

	"github.com/stretchr/testify/assert"
)

func TestConnectionRepository_AddAndGet(t *testing.T) {
	repo := NewMemoryConnectionRepository()
	repo.Add("conn-1")

	conn, ok := repo.Get("conn-1")
	assert.True(t, ok)
	assert.Equal(t, "conn-1", conn.ID)
	assert.Equal(t, domain.StatusOnline, conn.Status)
	assert.Empty(t, conn.Rooms)
	assert.False(t, conn.ConnectedAt.IsZero())

	_, ok = repo.Get("conn-2")
	assert.False(t, ok)
}

func TestConnectionRepository_GetReturnsSnapshot(t *testing.T) {
	repo := NewMemoryConnectionRepository()
	repo.Add("conn-1")
	repo.AddRoom("conn-1", "room-1")

	conn, _ := repo.Get("conn-1")
	delete(conn.Rooms, "room-1")
	conn.Metadata["k"] = "v"

	stored, _ := repo.Get("conn-1")
	assert.Contains(t, stored.Rooms, "room-1")
	assert.Empty(t, stored.Metadata)
}

func TestConnectionRepository_UpdateStatus(t *testing.T) {
	repo := NewMemoryConnectionRepository()
	repo.Add("conn-1")

	before, _ := repo.Get("conn-1")
	repo.UpdateStatus("conn-1", domain.StatusAway)

	after, _ := repo.Get("conn-1")
	assert.Equal(t, domain.StatusAway, after.Status)
	assert.False(t, after.LastActivity.Before(before.LastActivity))

	// unknown connection is a no-op
	repo.UpdateStatus("conn-2", domain.StatusAway)
	assert.Equal(t, 1, repo.Count())
}

func TestConnectionRepository_RoomMirror(t *testing.T) {
	repo := NewMemoryConnectionRepository()
	repo.Add("conn-1")
	repo.Add("conn-2")
	repo.AddRoom("conn-1", "room-1")
	repo.AddRoom("conn-1", "room-2")
	repo.AddRoom("conn-2", "room-1")

	assert.ElementsMatch(t, []string{"room-1", "room-2"}, repo.RoomIDs("conn-1"))
	assert.Equal(t, 2, repo.CountByRoom("room-1"))
	assert.Equal(t, 1, repo.CountByRoom("room-2"))

	repo.RemoveRoom("conn-1", "room-1")
	assert.ElementsMatch(t, []string{"room-2"}, repo.RoomIDs("conn-1"))
	assert.Equal(t, 1, repo.CountByRoom("room-1"))

	assert.Nil(t, repo.RoomIDs("conn-3"))
}

func TestConnectionRepository_Remove(t *testing.T) {
	repo := NewMemoryConnectionRepository()
	repo.Add("conn-1")
	repo.Add("conn-2")

	repo.Remove("conn-1")
	assert.Equal(t, 1, repo.Count())
	_, ok := repo.Get("conn-1")
	assert.False(t, ok)

	// removing twice is harmless
	repo.Remove("conn-1")
	assert.Equal(t, 1, repo.Count())
	assert.Len(t, repo.All(), 1)
}
