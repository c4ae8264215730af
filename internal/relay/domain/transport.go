package domain

// Transport is the delivery surface the broker fans out through. The broker
// never touches sockets directly; the implementation owns framing, keepalive
// and slow-peer handling, and a blocked peer must not stall other targets.
type Transport interface {
	// SendTo deliver one event to one connection
	SendTo(connectionID, event string, payload interface{}) error
	// SendToRoom deliver to every connection in a transport room, optionally
	// excluding one connection id
	SendToRoom(roomID, event string, payload interface{}, excludeConnectionID string)
	// BroadcastAll deliver to every live connection
	BroadcastAll(event string, payload interface{}, excludeConnectionID string)
	// JoinRoom bind a connection to a transport room
	JoinRoom(connectionID, roomID string)
	// LeaveRoom unbind a connection from a transport room
	LeaveRoom(connectionID, roomID string)
	// ForceDisconnect close the connection from the server side
	ForceDisconnect(connectionID, reason string) error
	// ConnectedCount live connection count
	ConnectedCount() int
}

// envelope scopes for the cross-instance fan-out bridge
const (
	// ScopeRoom deliver to a transport room
	ScopeRoom = "room"
	// ScopeConnection deliver to one connection
	ScopeConnection = "connection"
	// ScopeAll deliver to every connection
	ScopeAll = "all"
)

// RelayEnvelope one fan-out frame published between relay instances
type RelayEnvelope struct {
	Scope   string      `json:"scope"`
	Target  string      `json:"target,omitempty"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
	Exclude string      `json:"exclude,omitempty"`
}
