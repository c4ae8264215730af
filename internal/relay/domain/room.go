package domain

import "time"

// Membership binds a logical user id to a connection within one room.
// The user id is client-supplied and may outlive a single connection; a
// re-join with the same user id replaces the previous membership record.
type Membership struct {
	UserID       string                 `json:"user_id"`
	ConnectionID string                 `json:"connection_id"`
	JoinedAt     time.Time              `json:"joined_at"`
	UserData     map[string]interface{} `json:"user_data,omitempty"`
}

// Room named broadcast group, created lazily on first join and deleted
// synchronously with the removal of its last member
type Room struct {
	ID        string                 `json:"id"`
	CreatedAt time.Time              `json:"created_at"`
	Members   map[string]Membership  `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// MemberList membership snapshot in slice form
func (r *Room) MemberList() []Membership {
	members := make([]Membership, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, m)
	}
	return members
}

// Departure one (room, user) pair vacated by a disconnecting connection
type Departure struct {
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

// RoomStat per-room aggregate for the stats endpoint
type RoomStat struct {
	UserCount int       `json:"user_count"`
	CreatedAt time.Time `json:"created_at"`
}

// RelayStats aggregate relay state snapshot
type RelayStats struct {
	Connections int                 `json:"connections"`
	Rooms       int                 `json:"rooms"`
	RoomStats   map[string]RoomStat `json:"room_stats"`
	Uptime      float64             `json:"uptime"`
	Timestamp   time.Time           `json:"timestamp"`
}
