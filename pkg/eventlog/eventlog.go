package eventlog

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounded buffer capacity, oldest evicted first
const DefaultMaxEntries = 1000

// Entry one recorded broker event
type Entry struct {
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventLog bounded append-only record of broker activity. Log never fails
// and never blocks the operation it instruments.
type EventLog struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// New create EventLog, max <= 0 falls back to DefaultMaxEntries
func New(max int) *EventLog {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &EventLog{max: max}
}

// Log append an entry stamped with the current time
func (l *EventLog) Log(event string, data map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	})
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// Query the most recent limit entries, oldest of the returned slice first
func (l *EventLog) Query(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Entry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// QueryByEvent the most recent limit entries matching the event name
func (l *EventLog) QueryByEvent(event string, limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	matched := make([]Entry, 0)
	for _, e := range l.entries {
		if e.Event == event {
			matched = append(matched, e)
		}
	}
	if limit <= 0 || limit > len(matched) {
		limit = len(matched)
	}
	return matched[len(matched)-limit:]
}

// Len current number of retained entries
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
