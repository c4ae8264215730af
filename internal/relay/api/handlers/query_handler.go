package handlers

import (
	"time"

	"websocket_relay_service/internal/relay/app"

	"github.com/gofiber/fiber/v2"
)

// QueryHandler 处理 relay 狀態查詢的 HTTP 请求 (read-only)
type QueryHandler struct {
	broker *app.Broker
}

// NewQueryHandler create QueryHandler
func NewQueryHandler(broker *app.Broker) *QueryHandler {
	return &QueryHandler{
		broker: broker,
	}
}

// Health service health check
// @Summary Health check
// @Tags Shared
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *QueryHandler) Health(c *fiber.Ctx) error {
	stats := h.broker.Stats()
	return c.JSON(fiber.Map{
		"status":      "OK",
		"timestamp":   time.Now(),
		"uptime":      stats.Uptime,
		"connections": stats.Connections,
	})
}

// Stats aggregate relay stats
// @Summary Relay statistics
// @Tags Query
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/stats [get]
func (h *QueryHandler) Stats(c *fiber.Ctx) error {
	stats := h.broker.Stats()
	return c.JSON(fiber.Map{
		"connections": stats.Connections,
		"rooms":       stats.Rooms,
		"room_stats":  stats.RoomStats,
		"uptime":      stats.Uptime,
		"timestamp":   stats.Timestamp,
	})
}

// Connections list live connections
// @Summary List connections
// @Tags Query
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/connections [get]
func (h *QueryHandler) Connections(c *fiber.Ctx) error {
	conns := h.broker.Connections()
	out := make([]fiber.Map, 0, len(conns))
	for _, conn := range conns {
		out = append(out, fiber.Map{
			"connection_id": conn.ID,
			"connected_at":  conn.ConnectedAt,
			"status":        conn.Status,
			"rooms":         conn.RoomIDs(),
			"last_activity": conn.LastActivity,
		})
	}
	return c.JSON(fiber.Map{"connections": out})
}

// Rooms list rooms with membership
// @Summary List rooms
// @Tags Query
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/rooms [get]
func (h *QueryHandler) Rooms(c *fiber.Ctx) error {
	rooms := h.broker.Rooms()
	out := make([]fiber.Map, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, fiber.Map{
			"id":         room.ID,
			"user_count": len(room.Members),
			"created_at": room.CreatedAt,
			"users":      room.MemberList(),
		})
	}
	return c.JSON(fiber.Map{"rooms": out})
}

// Room one room with its message history
// @Summary Room detail
// @Tags Query
// @Produce json
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/rooms/{roomId} [get]
func (h *QueryHandler) Room(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	room, ok := h.broker.Room(roomID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Room not found"})
	}

	return c.JSON(fiber.Map{
		"id":         room.ID,
		"user_count": len(room.Members),
		"created_at": room.CreatedAt,
		"users":      room.MemberList(),
		"messages":   h.broker.History(roomID, 0),
	})
}

// RoomMessages paged message history for one room
// @Summary Room message history
// @Tags Query
// @Produce json
// @Param roomId path string true "Room ID"
// @Param limit query int false "Max messages" default(50)
// @Success 200 {object} map[string]interface{}
// @Router /api/rooms/{roomId}/messages [get]
func (h *QueryHandler) RoomMessages(c *fiber.Ctx) error {
	roomID := c.Params("roomId")
	limit := c.QueryInt("limit", app.DefaultHistoryLimit)

	messages := h.broker.History(roomID, limit)
	return c.JSON(fiber.Map{"messages": messages})
}

// Logs recent broker event log entries
// @Summary Event log query
// @Tags Query
// @Produce json
// @Param limit query int false "Max entries" default(100)
// @Param event query string false "Event name filter"
// @Success 200 {object} map[string]interface{}
// @Router /api/logs [get]
func (h *QueryHandler) Logs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	event := c.Query("event")

	logs := h.broker.Logs(event, limit)
	return c.JSON(fiber.Map{"logs": logs})
}
