package domain

import "time"

// ConnectionStatus default status values, clients may send free-form strings
const (
	// StatusOnline connection default status
	StatusOnline = "online"
	// StatusAway connection away status
	StatusAway = "away"
)

// Connection one live transport session, owned by the connection repository
type Connection struct {
	ID           string                 `json:"connection_id"`
	Status       string                 `json:"status"`
	Rooms        map[string]struct{}    `json:"-"`
	ConnectedAt  time.Time              `json:"connected_at"`
	LastActivity time.Time              `json:"last_activity"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// RoomIDs room ids the connection currently belongs to
func (c *Connection) RoomIDs() []string {
	ids := make([]string, 0, len(c.Rooms))
	for id := range c.Rooms {
		ids = append(ids, id)
	}
	return ids
}
