package domain

import "time"

// Action websocket request action
type Action string

const (
	// JoinRoom websocket action join_room
	JoinRoom Action = "join_room"
	// LeaveRoom websocket action leave_room
	LeaveRoom Action = "leave_room"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"
	// EditMessage websocket action edit_message
	EditMessage Action = "edit_message"
	// DeleteMessage websocket action delete_message
	DeleteMessage Action = "delete_message"

	// UserTyping websocket action user_typing
	UserTyping Action = "user_typing"
	// UserStopTyping websocket action user_stop_typing
	UserStopTyping Action = "user_stop_typing"

	// StatusUpdate websocket action status_update
	StatusUpdate Action = "status_update"

	// CustomEvent websocket action custom_event, relays an arbitrary event
	CustomEvent Action = "custom_event"
)

// server -> client event names
const (
	// EventWelcome connect acknowledgment
	EventWelcome = "welcome"
	// EventRoomJoined sent to the joiner with the room snapshot
	EventRoomJoined = "room_joined"
	// EventUserJoined sent to the other room members
	EventUserJoined = "user_joined"
	// EventRoomLeft sent to the leaver
	EventRoomLeft = "room_left"
	// EventUserLeft sent to the remaining room members
	EventUserLeft = "user_left"
	// EventMessageReceived message fan-out
	EventMessageReceived = "message_received"
	// EventMessageEdited in-place history edit fan-out
	EventMessageEdited = "message_edited"
	// EventMessageDeleted history removal fan-out
	EventMessageDeleted = "message_deleted"
	// EventUserTyping typing indicator
	EventUserTyping = "user_typing"
	// EventUserStopTyping typing indicator cleared
	EventUserStopTyping = "user_stop_typing"
	// EventStatusUpdate presence status fan-out
	EventStatusUpdate = "status_update"
	// EventNotification backend-issued room notification
	EventNotification = "notification"
	// EventForceDisconnect server requested disconnect
	EventForceDisconnect = "force_disconnect"
	// EventError client-visible error
	EventError = "error"
)

// WSRequest websocket Request
type WSRequest struct {
	Action    string                 `json:"action"`
	RoomID    string                 `json:"room_id"`
	UserID    string                 `json:"user_id"`
	UserData  map[string]interface{} `json:"user_data"`
	Content   string                 `json:"content"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	MessageID string                 `json:"message_id"`
	Metadata  map[string]interface{} `json:"metadata"`
	Event     string                 `json:"event"`
	Payload   map[string]interface{} `json:"payload"`
	Target    *EventTarget           `json:"target"`
}

// WSResponse websocket Response
type WSResponse struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// EventTarget explicit routing target for injected events
type EventTarget struct {
	RoomID       string `json:"room_id,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
}

// Notification structured backend-issued room notification
type Notification struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}
