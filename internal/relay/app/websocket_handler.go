package app

import (
	"context"
	"encoding/json"
	"time"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RelayWebsocketHandler 可包含所有需要的 UseCase
type RelayWebsocketHandler struct {
	broker *Broker
	hub    *WebsocketHub
}

// NewRelayWebsocketHandler create RelayWebsocketHandler
func NewRelayWebsocketHandler(broker *Broker, hub *WebsocketHub) *RelayWebsocketHandler {
	return &RelayWebsocketHandler{
		broker: broker,
		hub:    hub,
	}
}

// HandleConnection 是 WebSocket 連線的進入點. One call per live connection;
// returns when the peer is gone, after disconnect cleanup has completed.
func (h *RelayWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	connectionID := uuid.New().String()

	ticker := time.NewTicker(30 * time.Second)
	ctxClose, cancel := context.WithCancel(context.Background())

	reason := "client disconnect"
	defer func() {
		ticker.Stop()
		cancel()
		// cleanup is not cancellable once started
		h.broker.Disconnect(connectionID, reason)
		h.hub.Unregister(connectionID)
		conn.Close()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		return nil
	})

	h.hub.Register(connectionID, conn)
	h.broker.Connect(connectionID)

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(
					websocket.PingMessage,
					nil,
					time.Now().Add(time.Second),
				); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Infof("Connection closed:", err)
			} else {
				reason = "transport error"
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, connectionID, mt, message)
	}
}

func (h *RelayWebsocketHandler) execWebsocketAction(ctx context.Context, connectionID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, connectionID, msg)
	default:
		h.sendError(connectionID, "unknown message type")
	}
}

func (h *RelayWebsocketHandler) textMessageAction(_ context.Context, connectionID string, msg []byte) {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		h.sendError(connectionID, "invalid request")
		return
	}

	switch req.Action {
	case string(domain.JoinRoom):
		// room id checked here so a bad request changes no state at all
		if req.RoomID == "" {
			h.sendError(connectionID, "Room ID is required")
			return
		}
		if err := h.broker.Join(connectionID, req.RoomID, req.UserID, req.UserData); err != nil {
			h.sendError(connectionID, err.Error())
		}

	case string(domain.LeaveRoom):
		h.broker.Leave(connectionID, req.RoomID, req.UserID)

	case string(domain.SendMessage):
		if _, err := h.broker.Send(connectionID, domain.MessageData{
			Content:  req.Content,
			RoomID:   req.RoomID,
			Type:     req.Type,
			Metadata: req.Metadata,
		}); err != nil {
			h.sendError(connectionID, err.Error())
		}

	case string(domain.EditMessage):
		if _, err := h.broker.EditMessage(connectionID, req.MessageID, req.RoomID, req.Content); err != nil {
			h.sendError(connectionID, err.Error())
		}

	case string(domain.DeleteMessage):
		if err := h.broker.DeleteMessage(connectionID, req.MessageID, req.RoomID); err != nil {
			h.sendError(connectionID, err.Error())
		}

	case string(domain.UserTyping):
		h.broker.Typing(connectionID, req.RoomID, req.UserID)

	case string(domain.UserStopTyping):
		h.broker.StopTyping(connectionID, req.RoomID, req.UserID)

	case string(domain.StatusUpdate):
		h.broker.UpdateStatus(connectionID, req.Status, req.RoomID)

	case string(domain.CustomEvent):
		if _, err := h.broker.InjectEvent(req.Event, req.Payload, req.Target); err != nil {
			h.sendError(connectionID, err.Error())
		}

	default:
		h.sendError(connectionID, "unknown action")
	}
}

func (h *RelayWebsocketHandler) sendError(connectionID, errorMsg string) {
	if err := h.hub.SendTo(connectionID, domain.EventError, map[string]interface{}{
		"message": errorMsg,
	}); err != nil {
		logger.Log.Errorf("error send error:", err)
	}
}
