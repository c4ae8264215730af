package router

import (
	"context"

	"websocket_relay_service/internal/relay/api/handlers"
	"websocket_relay_service/internal/relay/app"
	"websocket_relay_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册 relay 相关的路由
// @title Websocket Relay Service API
// @version 1.0
// @description API documentation for Websocket Relay Service
// @BasePath /
func RegisterRoutes(
	r *fiber.App,
	wsHandler *app.RelayWebsocketHandler,
	queryHandler *handlers.QueryHandler,
	eventHandler *handlers.EventHandler,
	limiter *middlewares.RateLimiter,
) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/health", queryHandler.Health)
	r.Post("/debug", handlers.DebugLogFlag)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHandler.HandleConnection(context.Background(), c)
	}))

	api := r.Group("/api", limiter.Middleware())
	api.Get("/stats", queryHandler.Stats)
	api.Get("/connections", queryHandler.Connections)
	api.Get("/rooms", queryHandler.Rooms)
	api.Get("/rooms/:roomId", queryHandler.Room)
	api.Get("/rooms/:roomId/messages", queryHandler.RoomMessages)
	api.Get("/logs", queryHandler.Logs)

	events := api.Group("/events")
	events.Post("/emit", eventHandler.Emit)
	events.Post("/broadcast", eventHandler.Broadcast)
	events.Post("/notify-room/:roomId", eventHandler.NotifyRoom)
	events.Post("/disconnect/:connectionId", eventHandler.Disconnect)
}
