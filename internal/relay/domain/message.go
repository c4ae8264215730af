package domain

import "time"

// MessageTypeText default message type tag
const MessageTypeText = "text"

// MessageData incoming payload for a send_message action
type MessageData struct {
	Content  string                 `json:"content"`
	RoomID   string                 `json:"room_id,omitempty"`
	Type     string                 `json:"type,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Message one relayed content item. Messages with a room id are retained in
// that room's bounded history; without one they are broadcast-only.
type Message struct {
	ID           string                 `json:"id"`
	ConnectionID string                 `json:"connection_id"`
	Content      string                 `json:"content"`
	Type         string                 `json:"type"`
	RoomID       string                 `json:"room_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Edited       bool                   `json:"edited"`
	EditedAt     *time.Time             `json:"edited_at,omitempty"`
	Reactions    map[string]int         `json:"reactions"`
}
