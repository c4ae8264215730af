package app

import (
	"context"
	"time"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/internal/relay/repository"
	errprocess "websocket_relay_service/pkg/err"
	"websocket_relay_service/pkg/eventlog"
	"websocket_relay_service/pkg/logger"
	"websocket_relay_service/pkg/middlewares"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Broker is the single entry point for the transport and the backend
// injection façade. It composes the registries, the message relay, the rate
// limiter and the event log, and owns the ordering of every cross-registry
// operation.
type Broker struct {
	conns     repository.ConnectionRepository
	rooms     repository.RoomRepository
	messages  *MessageUseCase
	events    *eventlog.EventLog
	limiter   *middlewares.RateLimiter
	transport domain.Transport
	pubsub    *repository.RelayPubSub
	startedAt time.Time
}

// NewBroker create Broker; pubsub may be nil for single-instance deployments
func NewBroker(
	conns repository.ConnectionRepository,
	rooms repository.RoomRepository,
	messages *MessageUseCase,
	events *eventlog.EventLog,
	limiter *middlewares.RateLimiter,
	transport domain.Transport,
	pubsub *repository.RelayPubSub,
) *Broker {
	return &Broker{
		conns:     conns,
		rooms:     rooms,
		messages:  messages,
		events:    events,
		limiter:   limiter,
		transport: transport,
		pubsub:    pubsub,
		startedAt: time.Now(),
	}
}

// StartBridge subscribe to the cross-instance fan-out channel and replay
// incoming envelopes into the local transport. No-op without a pubsub.
func (b *Broker) StartBridge(ctx context.Context) {
	if b.pubsub == nil {
		return
	}
	b.pubsub.Subscribe(ctx, func(env domain.RelayEnvelope) {
		switch env.Scope {
		case domain.ScopeRoom:
			b.transport.SendToRoom(env.Target, env.Event, env.Payload, env.Exclude)
		case domain.ScopeConnection:
			if err := b.transport.SendTo(env.Target, env.Event, env.Payload); err != nil {
				logger.Log.Errorf("bridge send error:", err)
			}
		case domain.ScopeAll:
			b.transport.BroadcastAll(env.Event, env.Payload, env.Exclude)
		}
	})
}

// Connect register a new connection and acknowledge it
func (b *Broker) Connect(connectionID string) {
	b.conns.Add(connectionID)

	if err := b.transport.SendTo(connectionID, domain.EventWelcome, map[string]interface{}{
		"connection_id": connectionID,
		"timestamp":     time.Now(),
		"message":       "Connected to relay service",
	}); err != nil {
		logger.Log.Errorf("welcome send error:", err)
	}

	logger.Log.Info("new connection", zap.String("connection_id", connectionID))
}

// Join add the connection to a room, tell the joiner the current membership
// and notify the other members
func (b *Broker) Join(connectionID, roomID, userID string, userData map[string]interface{}) error {
	room, err := b.rooms.Join(roomID, connectionID, userID, userData)
	if err != nil {
		return err
	}
	b.transport.JoinRoom(connectionID, roomID)

	if err := b.transport.SendTo(connectionID, domain.EventRoomJoined, map[string]interface{}{
		"room_id":    roomID,
		"user_count": len(room.Members),
		"users":      room.MemberList(),
	}); err != nil {
		logger.Log.Errorf("room_joined send error:", err)
	}

	b.deliverRoom(roomID, domain.EventUserJoined, map[string]interface{}{
		"user_id":   effectiveUserID(userID, connectionID),
		"user_data": userData,
		"timestamp": time.Now(),
	}, connectionID)

	b.events.Log("room_join", map[string]interface{}{
		"connection_id": connectionID,
		"room_id":       roomID,
		"user_id":       userID,
	})
	return nil
}

// Leave remove the connection from a room and notify the remaining members.
// Leaving a room the connection is not in is a no-op, not an error.
func (b *Broker) Leave(connectionID, roomID, userID string) {
	removedUser, removed := b.rooms.Leave(roomID, connectionID)
	b.transport.LeaveRoom(connectionID, roomID)

	if err := b.transport.SendTo(connectionID, domain.EventRoomLeft, map[string]interface{}{
		"room_id": roomID,
	}); err != nil {
		logger.Log.Errorf("room_left send error:", err)
	}

	if !removed {
		removedUser = effectiveUserID(userID, connectionID)
	}
	b.deliverRoom(roomID, domain.EventUserLeft, map[string]interface{}{
		"user_id":   removedUser,
		"timestamp": time.Now(),
	}, connectionID)

	b.events.Log("room_leave", map[string]interface{}{
		"connection_id": connectionID,
		"room_id":       roomID,
		"user_id":       userID,
	})
}

// Send relay a message: room-scoped when it carries a room id, global
// broadcast otherwise. Admission control runs before any processing.
func (b *Broker) Send(connectionID string, data domain.MessageData) (domain.Message, error) {
	if ok, retryAfter := b.limiter.Allow(connectionID); !ok {
		return domain.Message{}, errprocess.RateLimited("too many messages", retryAfter)
	}

	msg, err := b.messages.Process(connectionID, data)
	if err != nil {
		return domain.Message{}, err
	}

	if msg.RoomID != "" {
		b.deliverRoom(msg.RoomID, domain.EventMessageReceived, msg, "")
	} else {
		b.deliverAll(domain.EventMessageReceived, msg, "")
	}

	b.events.Log("message_sent", map[string]interface{}{
		"connection_id": connectionID,
		"room_id":       msg.RoomID,
		"message_id":    msg.ID,
	})
	return msg, nil
}

// EditMessage mutate a retained message and fan the edit out to its room
func (b *Broker) EditMessage(connectionID, messageID, roomID, newContent string) (domain.Message, error) {
	if roomID == "" {
		return domain.Message{}, errprocess.Invalid("room id is required")
	}
	if newContent == "" {
		return domain.Message{}, errprocess.Invalid("message content is required")
	}

	msg, ok := b.messages.Edit(messageID, roomID, newContent)
	if !ok {
		return domain.Message{}, errprocess.NotFound("message not found")
	}

	b.deliverRoom(roomID, domain.EventMessageEdited, msg, "")
	b.events.Log("message_edited", map[string]interface{}{
		"connection_id": connectionID,
		"room_id":       roomID,
		"message_id":    messageID,
	})
	return msg, nil
}

// DeleteMessage remove a retained message and fan the removal out to its room
func (b *Broker) DeleteMessage(connectionID, messageID, roomID string) error {
	if roomID == "" {
		return errprocess.Invalid("room id is required")
	}
	if !b.messages.Delete(messageID, roomID) {
		return errprocess.NotFound("message not found")
	}

	b.deliverRoom(roomID, domain.EventMessageDeleted, map[string]interface{}{
		"message_id": messageID,
		"room_id":    roomID,
	}, "")
	b.events.Log("message_deleted", map[string]interface{}{
		"connection_id": connectionID,
		"room_id":       roomID,
		"message_id":    messageID,
	})
	return nil
}

// Typing transient typing indicator, nothing persisted
func (b *Broker) Typing(connectionID, roomID, userID string) {
	b.deliverRoom(roomID, domain.EventUserTyping, map[string]interface{}{
		"user_id":   effectiveUserID(userID, connectionID),
		"timestamp": time.Now(),
	}, connectionID)
}

// StopTyping transient typing indicator cleared
func (b *Broker) StopTyping(connectionID, roomID, userID string) {
	b.deliverRoom(roomID, domain.EventUserStopTyping, map[string]interface{}{
		"user_id":   effectiveUserID(userID, connectionID),
		"timestamp": time.Now(),
	}, connectionID)
}

// UpdateStatus update presence status, with optional room-scoped fan-out
func (b *Broker) UpdateStatus(connectionID, status, roomID string) {
	b.conns.UpdateStatus(connectionID, status)

	if roomID != "" {
		b.deliverRoom(roomID, domain.EventStatusUpdate, map[string]interface{}{
			"user_id":   connectionID,
			"status":    status,
			"timestamp": time.Now(),
		}, connectionID)
	}
}

// Disconnect tear down a closed connection. The room set is captured before
// the connection record is removed; losing it would strand memberships in
// rooms that never empty. Cleanup always runs to completion.
func (b *Broker) Disconnect(connectionID, reason string) {
	roomIDs := b.conns.RoomIDs(connectionID)
	b.conns.Remove(connectionID)

	departures := b.rooms.HandleDisconnect(connectionID, roomIDs)
	for _, d := range departures {
		b.transport.LeaveRoom(connectionID, d.RoomID)
		b.deliverRoom(d.RoomID, domain.EventUserLeft, map[string]interface{}{
			"user_id":   d.UserID,
			"timestamp": time.Now(),
		}, connectionID)
	}

	b.events.Log("disconnect", map[string]interface{}{
		"connection_id": connectionID,
		"reason":        reason,
	})
	logger.Log.Info("disconnected",
		zap.String("connection_id", connectionID),
		zap.String("reason", reason),
	)
}

// InjectEvent route a backend-issued event by explicit target. Touches only
// the transport, never the registries. Returns where it was emitted to.
func (b *Broker) InjectEvent(event string, data interface{}, target *domain.EventTarget) (string, error) {
	if event == "" {
		return "", errprocess.Invalid("event name is required")
	}

	emittedTo := "all"
	switch {
	case target != nil && target.RoomID != "":
		b.deliverRoom(target.RoomID, event, data, "")
		emittedTo = "room:" + target.RoomID
	case target != nil && target.UserID != "":
		// user ids route through the personal transport room of the same name
		b.deliverRoom(target.UserID, event, data, "")
		emittedTo = "user:" + target.UserID
	case target != nil && target.ConnectionID != "":
		b.deliverConn(target.ConnectionID, event, data)
		emittedTo = "connection:" + target.ConnectionID
	default:
		b.deliverAll(event, data, "")
	}

	b.events.Log("custom_event", map[string]interface{}{
		"event":      event,
		"emitted_to": emittedTo,
	})
	return emittedTo, nil
}

// Broadcast emit a backend-issued event to every connection
func (b *Broker) Broadcast(event string, data interface{}) (int, error) {
	if event == "" {
		return 0, errprocess.Invalid("event name is required")
	}
	b.deliverAll(event, data, "")

	b.events.Log("broadcast", map[string]interface{}{"event": event})
	return b.transport.ConnectedCount(), nil
}

// NotifyRoom send a structured notification to a room
func (b *Broker) NotifyRoom(roomID, title, message, notifyType string, data map[string]interface{}) (domain.Notification, error) {
	if title == "" || message == "" {
		return domain.Notification{}, errprocess.Invalid("title and message are required")
	}
	if notifyType == "" {
		notifyType = "info"
	}
	if data == nil {
		data = make(map[string]interface{})
	}

	n := domain.Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Message:   message,
		Type:      notifyType,
		Data:      data,
		Timestamp: time.Now(),
	}
	b.deliverRoom(roomID, domain.EventNotification, n, "")

	b.events.Log("notification", map[string]interface{}{
		"room_id": roomID,
		"title":   title,
	})
	return n, nil
}

// ForceDisconnect close a connection from the server side with a reason
func (b *Broker) ForceDisconnect(connectionID, reason string) error {
	if _, ok := b.conns.Get(connectionID); !ok {
		return errprocess.NotFound("connection not found")
	}

	if err := b.transport.SendTo(connectionID, domain.EventForceDisconnect, map[string]interface{}{
		"reason": reason,
	}); err != nil {
		logger.Log.Errorf("force_disconnect send error:", err)
	}
	return b.transport.ForceDisconnect(connectionID, reason)
}

// Stats aggregate relay snapshot
func (b *Broker) Stats() domain.RelayStats {
	return domain.RelayStats{
		Connections: b.conns.Count(),
		Rooms:       len(b.rooms.All()),
		RoomStats:   b.rooms.Stats(),
		Uptime:      time.Since(b.startedAt).Seconds(),
		Timestamp:   time.Now(),
	}
}

// Connections connection snapshots for the query façade
func (b *Broker) Connections() []domain.Connection {
	return b.conns.All()
}

// Rooms room snapshots for the query façade
func (b *Broker) Rooms() []domain.Room {
	return b.rooms.All()
}

// Room one room snapshot
func (b *Broker) Room(roomID string) (domain.Room, bool) {
	return b.rooms.Get(roomID)
}

// History recent room messages in chronological order
func (b *Broker) History(roomID string, limit int) []domain.Message {
	return b.messages.History(roomID, limit)
}

// Logs recent event log entries, optionally filtered by event name
func (b *Broker) Logs(event string, limit int) []eventlog.Entry {
	if event != "" {
		return b.events.QueryByEvent(event, limit)
	}
	return b.events.Query(limit)
}

func (b *Broker) deliverRoom(roomID, event string, payload interface{}, exclude string) {
	if b.publish(domain.RelayEnvelope{
		Scope:   domain.ScopeRoom,
		Target:  roomID,
		Event:   event,
		Payload: payload,
		Exclude: exclude,
	}) {
		return
	}
	b.transport.SendToRoom(roomID, event, payload, exclude)
}

func (b *Broker) deliverAll(event string, payload interface{}, exclude string) {
	if b.publish(domain.RelayEnvelope{
		Scope:   domain.ScopeAll,
		Event:   event,
		Payload: payload,
		Exclude: exclude,
	}) {
		return
	}
	b.transport.BroadcastAll(event, payload, exclude)
}

func (b *Broker) deliverConn(connectionID, event string, payload interface{}) {
	if b.publish(domain.RelayEnvelope{
		Scope:   domain.ScopeConnection,
		Target:  connectionID,
		Event:   event,
		Payload: payload,
	}) {
		return
	}
	if err := b.transport.SendTo(connectionID, event, payload); err != nil {
		logger.Log.Errorf("send error:", err)
	}
}

// publish reports whether the envelope went through the bridge. On a publish
// failure the caller falls back to local-only delivery.
func (b *Broker) publish(env domain.RelayEnvelope) bool {
	if b.pubsub == nil {
		return false
	}
	if err := b.pubsub.Publish(context.Background(), env); err != nil {
		logger.Log.Errorf("relay publish error:", err)
		return false
	}
	return true
}

func effectiveUserID(userID, connectionID string) string {
	if userID != "" {
		return userID
	}
	return connectionID
}
