package repository

import (
	"sync"
	"time"

	"websocket_relay_service/internal/relay/domain"
	errprocess "websocket_relay_service/pkg/err"
)

// RoomRepository tracks rooms and per-room membership. Membership is keyed by
// logical user id: a later join with the same user id supersedes the earlier
// membership record, which covers reconnects under a stable backend identity.
// Every mutation mirrors the connection side inside the same critical section,
// and a room is deleted in the same step that removes its last member.
type RoomRepository interface {
	Join(roomID, connectionID, userID string, userData map[string]interface{}) (domain.Room, error)
	Leave(roomID, connectionID string) (string, bool)
	HandleDisconnect(connectionID string, roomIDs []string) []domain.Departure
	Get(roomID string) (domain.Room, bool)
	All() []domain.Room
	Stats() map[string]domain.RoomStat
}

type memoryRoomRepository struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
	conns ConnectionRepository
}

// NewMemoryRoomRepository create in-memory RoomRepository mirroring into conns
func NewMemoryRoomRepository(conns ConnectionRepository) RoomRepository {
	return &memoryRoomRepository{
		rooms: make(map[string]*domain.Room),
		conns: conns,
	}
}

// Join add a membership, creating the room lazily. The effective user id is
// userID when given, else connectionID. Returns the post-join room snapshot.
func (r *memoryRoomRepository) Join(roomID, connectionID, userID string, userData map[string]interface{}) (domain.Room, error) {
	if roomID == "" {
		return domain.Room{}, errprocess.Invalid("room id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = &domain.Room{
			ID:        roomID,
			CreatedAt: time.Now(),
			Members:   make(map[string]domain.Membership),
			Metadata:  make(map[string]interface{}),
		}
		r.rooms[roomID] = room
	}

	userKey := userID
	if userKey == "" {
		userKey = connectionID
	}

	// Last join wins. When the superseded membership belonged to a different
	// connection its mirror entry is cleared too, so the registries never
	// disagree.
	if prev, ok := room.Members[userKey]; ok && prev.ConnectionID != connectionID {
		if !r.hasOtherMembership(room, prev.ConnectionID, userKey) {
			r.conns.RemoveRoom(prev.ConnectionID, roomID)
		}
	}

	room.Members[userKey] = domain.Membership{
		UserID:       userKey,
		ConnectionID: connectionID,
		JoinedAt:     time.Now(),
		UserData:     userData,
	}
	r.conns.AddRoom(connectionID, roomID)

	return snapshotRoom(room), nil
}

// Leave remove the membership bound to connectionID, deleting the room in the
// same step when it empties. No-op when the room or membership is absent;
// returns the removed user id and whether a removal happened.
func (r *memoryRoomRepository) Leave(roomID, connectionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeConnection(roomID, connectionID)
}

// HandleDisconnect remove the connection from every room in roomIDs, the room
// set captured before the connection record was removed. Returns the vacated
// (room, user) pairs for departure notifications.
func (r *memoryRoomRepository) HandleDisconnect(connectionID string, roomIDs []string) []domain.Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	departures := make([]domain.Departure, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		if userID, ok := r.removeConnection(roomID, connectionID); ok {
			departures = append(departures, domain.Departure{RoomID: roomID, UserID: userID})
		}
	}
	return departures
}

// removeConnection caller must hold r.mu. Membership is keyed by user id, so
// the reverse lookup is a scan within the one room.
func (r *memoryRoomRepository) removeConnection(roomID, connectionID string) (string, bool) {
	room, ok := r.rooms[roomID]
	if !ok {
		return "", false
	}

	for userID, m := range room.Members {
		if m.ConnectionID == connectionID {
			delete(room.Members, userID)
			r.conns.RemoveRoom(connectionID, roomID)
			if len(room.Members) == 0 {
				delete(r.rooms, roomID)
			}
			return userID, true
		}
	}
	return "", false
}

func (r *memoryRoomRepository) hasOtherMembership(room *domain.Room, connectionID, exceptUserID string) bool {
	for userID, m := range room.Members {
		if userID != exceptUserID && m.ConnectionID == connectionID {
			return true
		}
	}
	return false
}

// Get snapshot of one room
func (r *memoryRoomRepository) Get(roomID string) (domain.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.Room{}, false
	}
	return snapshotRoom(room), true
}

// All snapshot of every room
func (r *memoryRoomRepository) All() []domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		out = append(out, snapshotRoom(room))
	}
	return out
}

// Stats per-room aggregates
func (r *memoryRoomRepository) Stats() map[string]domain.RoomStat {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]domain.RoomStat, len(r.rooms))
	for roomID, room := range r.rooms {
		stats[roomID] = domain.RoomStat{
			UserCount: len(room.Members),
			CreatedAt: room.CreatedAt,
		}
	}
	return stats
}

func snapshotRoom(room *domain.Room) domain.Room {
	out := *room
	out.Members = make(map[string]domain.Membership, len(room.Members))
	for userID, m := range room.Members {
		out.Members[userID] = m
	}
	out.Metadata = make(map[string]interface{}, len(room.Metadata))
	for k, v := range room.Metadata {
		out.Metadata[k] = v
	}
	return out
}
