package repository

import (
	"sync"
	"time"

	"websocket_relay_service/internal/relay/domain"
)

// DefaultMaxHistoryPerRoom bounded per-room retention, oldest evicted first
const DefaultMaxHistoryPerRoom = 100

// HistoryRepository bounded per-room retention of relayed messages. The
// history is a catch-up aid, not a log: strict FIFO eviction, nothing
// persisted. Each room is locked independently so one busy room does not
// serialize the others.
type HistoryRepository interface {
	Append(roomID string, msg domain.Message)
	Recent(roomID string, limit int) []domain.Message
	Edit(messageID, roomID, newContent string) (domain.Message, bool)
	Delete(messageID, roomID string) bool
}

type memoryHistoryRepository struct {
	mu    sync.Mutex
	max   int
	rooms map[string]*roomHistory
}

type roomHistory struct {
	mu       sync.Mutex
	messages []domain.Message
}

// NewMemoryHistoryRepository create in-memory HistoryRepository,
// max <= 0 falls back to DefaultMaxHistoryPerRoom
func NewMemoryHistoryRepository(max int) HistoryRepository {
	if max <= 0 {
		max = DefaultMaxHistoryPerRoom
	}
	return &memoryHistoryRepository{
		max:   max,
		rooms: make(map[string]*roomHistory),
	}
}

func (r *memoryHistoryRepository) room(roomID string, create bool) *roomHistory {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.rooms[roomID]
	if !ok && create {
		h = &roomHistory{}
		r.rooms[roomID] = h
	}
	return h
}

// Append retain a message, evicting the oldest past capacity
func (r *memoryHistoryRepository) Append(roomID string, msg domain.Message) {
	h := r.room(roomID, true)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if len(h.messages) > r.max {
		h.messages = h.messages[len(h.messages)-r.max:]
	}
}

// Recent the most recent limit messages in chronological order
func (r *memoryHistoryRepository) Recent(roomID string, limit int) []domain.Message {
	h := r.room(roomID, false)
	if h == nil {
		return []domain.Message{}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.messages) {
		limit = len(h.messages)
	}
	out := make([]domain.Message, limit)
	copy(out, h.messages[len(h.messages)-limit:])
	return out
}

// Edit mutate a retained message in place by id. A miss is benign: the
// message may simply have been evicted already.
func (r *memoryHistoryRepository) Edit(messageID, roomID, newContent string) (domain.Message, bool) {
	h := r.room(roomID, false)
	if h == nil {
		return domain.Message{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.messages {
		if h.messages[i].ID == messageID {
			now := time.Now()
			h.messages[i].Content = newContent
			h.messages[i].Edited = true
			h.messages[i].EditedAt = &now
			return h.messages[i], true
		}
	}
	return domain.Message{}, false
}

// Delete remove a retained message by id, reporting whether one was removed
func (r *memoryHistoryRepository) Delete(messageID, roomID string) bool {
	h := r.room(roomID, false)
	if h == nil {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for i := range h.messages {
		if h.messages[i].ID == messageID {
			h.messages = append(h.messages[:i], h.messages[i+1:]...)
			return true
		}
	}
	return false
}
