package app

import (
	"encoding/json"
	"sync"
	"time"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
)

// WebsocketHub implements domain.Transport over live fiber websocket
// connections. Writes to one *websocket.Conn must not interleave, so every
// connection carries its own write lock; a slow peer therefore only blocks
// writers targeting that one connection.
type WebsocketHub struct {
	mu    sync.RWMutex
	conns map[string]*hubConn
	rooms map[string]map[string]struct{}
}

type hubConn struct {
	id string

	writeMu sync.Mutex
	ws      *websocket.Conn
}

// NewWebsocketHub create WebsocketHub
func NewWebsocketHub() *WebsocketHub {
	return &WebsocketHub{
		conns: make(map[string]*hubConn),
		rooms: make(map[string]map[string]struct{}),
	}
}

// Register bind a live websocket to a connection id. Every connection also
// joins a personal transport room named by its own id, so id-targeted
// injection routes the same way room-targeted injection does.
func (h *WebsocketHub) Register(connectionID string, ws *websocket.Conn) {
	h.mu.Lock()
	h.conns[connectionID] = &hubConn{id: connectionID, ws: ws}
	h.mu.Unlock()

	h.JoinRoom(connectionID, connectionID)
}

// Unregister drop a connection and all its transport room bindings
func (h *WebsocketHub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connectionID)
	for roomID, members := range h.rooms {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// SendTo deliver one event to one connection
func (h *WebsocketHub) SendTo(connectionID, event string, payload interface{}) error {
	h.mu.RLock()
	conn, ok := h.conns[connectionID]
	h.mu.RUnlock()

	if !ok {
		return nil
	}
	return h.write(conn, event, payload)
}

// SendToRoom deliver to every member of a transport room
func (h *WebsocketHub) SendToRoom(roomID, event string, payload interface{}, excludeConnectionID string) {
	for _, conn := range h.roomConns(roomID, excludeConnectionID) {
		if err := h.write(conn, event, payload); err != nil {
			logger.Log.Errorf("room write error:", err)
		}
	}
}

// BroadcastAll deliver to every live connection
func (h *WebsocketHub) BroadcastAll(event string, payload interface{}, excludeConnectionID string) {
	h.mu.RLock()
	targets := make([]*hubConn, 0, len(h.conns))
	for id, conn := range h.conns {
		if id == excludeConnectionID {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := h.write(conn, event, payload); err != nil {
			logger.Log.Errorf("broadcast write error:", err)
		}
	}
}

// JoinRoom bind a connection to a transport room
func (h *WebsocketHub) JoinRoom(connectionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[roomID] = members
	}
	members[connectionID] = struct{}{}
}

// LeaveRoom unbind a connection from a transport room
func (h *WebsocketHub) LeaveRoom(connectionID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

// ForceDisconnect close the connection from the server side. The read loop
// observes the close and drives the usual disconnect cleanup.
func (h *WebsocketHub) ForceDisconnect(connectionID, reason string) error {
	h.mu.RLock()
	conn, ok := h.conns[connectionID]
	h.mu.RUnlock()

	if !ok {
		return nil
	}

	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()

	if err := conn.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	); err != nil {
		logger.Log.Errorf("Failed to send CloseMessage:", err)
	}
	return conn.ws.Close()
}

// ConnectedCount live connection count
func (h *WebsocketHub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *WebsocketHub) roomConns(roomID, excludeConnectionID string) []*hubConn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	targets := make([]*hubConn, 0, len(members))
	for id := range members {
		if id == excludeConnectionID {
			continue
		}
		if conn, ok := h.conns[id]; ok {
			targets = append(targets, conn)
		}
	}
	return targets
}

func (h *WebsocketHub) write(conn *hubConn, event string, payload interface{}) error {
	b, err := json.Marshal(domain.WSResponse{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()

	conn.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.ws.WriteMessage(websocket.TextMessage, b)
}
