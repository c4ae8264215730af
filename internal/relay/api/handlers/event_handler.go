package handlers

import (
	"time"

	"websocket_relay_service/internal/relay/app"
	"websocket_relay_service/internal/relay/domain"
	errprocess "websocket_relay_service/pkg/err"
	"websocket_relay_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EventHandler 处理 backend 注入事件的 HTTP 请求
type EventHandler struct {
	broker *app.Broker
}

// NewEventHandler create EventHandler
func NewEventHandler(broker *app.Broker) *EventHandler {
	return &EventHandler{
		broker: broker,
	}
}

// Emit emit an event to an explicit target
// @Summary Emit event
// @Description Emit an event to a room, user, connection, or everyone
// @Tags Events
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/events/emit [post]
func (h *EventHandler) Emit(c *fiber.Ctx) error {
	type request struct {
		Event  string                 `json:"event"`
		Data   map[string]interface{} `json:"data"`
		Target *domain.EventTarget    `json:"target"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	emittedTo, err := h.broker.InjectEvent(req.Event, req.Data, req.Target)
	if err != nil {
		return respondError(c, err)
	}

	logger.Log.Info("event emitted",
		zap.String("event", req.Event),
		zap.String("emitted_to", emittedTo),
	)
	return c.JSON(fiber.Map{
		"success":    true,
		"event":      req.Event,
		"emitted_to": emittedTo,
		"timestamp":  time.Now(),
	})
}

// Broadcast emit an event to every connection
// @Summary Broadcast event
// @Tags Events
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/events/broadcast [post]
func (h *EventHandler) Broadcast(c *fiber.Ctx) error {
	type request struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	count, err := h.broker.Broadcast(req.Event, req.Data)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"event":             req.Event,
		"emitted_to":        "all",
		"connected_clients": count,
		"timestamp":         time.Now(),
	})
}

// NotifyRoom send a structured notification to a room
// @Summary Notify room
// @Tags Events
// @Accept json
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/events/notify-room/{roomId} [post]
func (h *EventHandler) NotifyRoom(c *fiber.Ctx) error {
	type request struct {
		Title   string                 `json:"title"`
		Message string                 `json:"message"`
		Type    string                 `json:"type"`
		Data    map[string]interface{} `json:"data"`
	}

	roomID := c.Params("roomId")
	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	notification, err := h.broker.NotifyRoom(roomID, req.Title, req.Message, req.Type, req.Data)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"room_id":      roomID,
		"notification": notification,
		"timestamp":    time.Now(),
	})
}

// Disconnect force-disconnect a connection by id
// @Summary Force disconnect
// @Tags Events
// @Accept json
// @Produce json
// @Param connectionId path string true "Connection ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/events/disconnect/{connectionId} [post]
func (h *EventHandler) Disconnect(c *fiber.Ctx) error {
	type request struct {
		Reason string `json:"reason"`
	}

	connectionID := c.Params("connectionId")
	var req request
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Reason == "" {
		req.Reason = "Server requested disconnect"
	}

	if err := h.broker.ForceDisconnect(connectionID, req.Reason); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"connection_id": connectionID,
		"reason":        req.Reason,
		"timestamp":     time.Now(),
	})
}

// respondError map the error taxonomy onto HTTP statuses without leaking
// internal state
func respondError(c *fiber.Ctx, err error) error {
	switch errprocess.KindOf(err) {
	case errprocess.KindInvalidArgument:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errprocess.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errprocess.KindRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":       err.Error(),
			"retry_after": int(errprocess.RetryAfter(err).Seconds()),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
