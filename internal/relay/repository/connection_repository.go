package repository

import (
	"sync"
	"time"

	"websocket_relay_service/internal/relay/domain"
)

// ConnectionRepository tracks live connections and mirrors their room
// membership. The room set here and the memberships held by the room
// repository must never disagree; the room repository applies both sides of
// every membership mutation in one logical step.
type ConnectionRepository interface {
	Add(connectionID string)
	Remove(connectionID string)
	UpdateStatus(connectionID, status string)
	AddRoom(connectionID, roomID string)
	RemoveRoom(connectionID, roomID string)
	Get(connectionID string) (domain.Connection, bool)
	All() []domain.Connection
	Count() int
	CountByRoom(roomID string) int
	RoomIDs(connectionID string) []string
}

type memoryConnectionRepository struct {
	mu          sync.RWMutex
	connections map[string]*domain.Connection
}

// NewMemoryConnectionRepository create in-memory ConnectionRepository
func NewMemoryConnectionRepository() ConnectionRepository {
	return &memoryConnectionRepository{
		connections: make(map[string]*domain.Connection),
	}
}

// Add register a connection with status online and an empty room set.
// Overwrites an existing record with the same id.
func (r *memoryConnectionRepository) Add(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.connections[connectionID] = &domain.Connection{
		ID:           connectionID,
		Status:       domain.StatusOnline,
		Rooms:        make(map[string]struct{}),
		ConnectedAt:  now,
		LastActivity: now,
		Metadata:     make(map[string]interface{}),
	}
}

// Remove delete the connection record. Room membership cleanup is driven
// separately by the room repository.
func (r *memoryConnectionRepository) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, connectionID)
}

// UpdateStatus set status and bump last activity, no-op when absent
func (r *memoryConnectionRepository) UpdateStatus(connectionID, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[connectionID]; ok {
		conn.Status = status
		conn.LastActivity = time.Now()
	}
}

// AddRoom mirror a room join into the connection's room set
func (r *memoryConnectionRepository) AddRoom(connectionID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[connectionID]; ok {
		conn.Rooms[roomID] = struct{}{}
	}
}

// RemoveRoom mirror a room leave out of the connection's room set
func (r *memoryConnectionRepository) RemoveRoom(connectionID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[connectionID]; ok {
		delete(conn.Rooms, roomID)
	}
}

// Get snapshot of one connection
func (r *memoryConnectionRepository) Get(connectionID string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[connectionID]
	if !ok {
		return domain.Connection{}, false
	}
	return snapshotConnection(conn), true
}

// All snapshot of every connection, not a live view
func (r *memoryConnectionRepository) All() []domain.Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		out = append(out, snapshotConnection(conn))
	}
	return out
}

// Count live connection count
func (r *memoryConnectionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// CountByRoom connections whose mirrored room set contains roomID
func (r *memoryConnectionRepository) CountByRoom(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, conn := range r.connections {
		if _, ok := conn.Rooms[roomID]; ok {
			count++
		}
	}
	return count
}

// RoomIDs mirrored room set of one connection, empty when absent
func (r *memoryConnectionRepository) RoomIDs(connectionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[connectionID]
	if !ok {
		return nil
	}
	return conn.RoomIDs()
}

func snapshotConnection(conn *domain.Connection) domain.Connection {
	out := *conn
	out.Rooms = make(map[string]struct{}, len(conn.Rooms))
	for id := range conn.Rooms {
		out.Rooms[id] = struct{}{}
	}
	out.Metadata = make(map[string]interface{}, len(conn.Metadata))
	for k, v := range conn.Metadata {
		out.Metadata[k] = v
	}
	return out
}
