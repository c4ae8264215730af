package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"websocket_relay_service/internal/relay/api/handlers"
	"websocket_relay_service/internal/relay/app"
	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/internal/relay/repository"
	"websocket_relay_service/internal/relay/router"
	"websocket_relay_service/pkg/eventlog"
	"websocket_relay_service/pkg/logger"
	"websocket_relay_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Log = logger.Initialize("relay_test", os.TempDir())
	os.Exit(m.Run())
}

// newTestApp wires a full app over a hub with no live websockets, so every
// delivery is a silent no-op and only the HTTP surface is under test.
func newTestApp() (*fiber.App, *app.Broker) {
	conns := repository.NewMemoryConnectionRepository()
	rooms := repository.NewMemoryRoomRepository(conns)
	history := repository.NewMemoryHistoryRepository(0)
	limiter := middlewares.NewRateLimiter(time.Minute, 1000)
	hub := app.NewWebsocketHub()
	broker := app.NewBroker(
		conns,
		rooms,
		app.NewMessageUseCase(history),
		eventlog.New(0),
		limiter,
		hub,
		nil,
	)

	r := fiber.New()
	router.RegisterRoutes(
		r,
		app.NewRelayWebsocketHandler(broker, hub),
		handlers.NewQueryHandler(broker),
		handlers.NewEventHandler(broker),
		limiter,
	)
	return r, broker
}

func getJSON(t *testing.T, r *fiber.App, url string, wantStatus int) map[string]interface{} {
	t.Helper()
	resp, err := r.Test(httptest.NewRequest(http.MethodGet, url, nil))
	assert.NoError(t, err)
	assert.Equal(t, wantStatus, resp.StatusCode)
	return decodeBody(t, resp)
}

func postJSON(t *testing.T, r *fiber.App, url, body string, wantStatus int) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, wantStatus, resp.StatusCode)
	return decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestHealth(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")

	body := getJSON(t, r, "/health", fiber.StatusOK)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(1), body["connections"])
}

func TestStats(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")
	broker.Connect("conn-2")
	assert.NoError(t, broker.Join("conn-1", "room-1", "alice", nil))

	body := getJSON(t, r, "/api/stats", fiber.StatusOK)
	assert.Equal(t, float64(2), body["connections"])
	assert.Equal(t, float64(1), body["rooms"])

	roomStats := body["room_stats"].(map[string]interface{})
	assert.Contains(t, roomStats, "room-1")
}

func TestConnections(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")

	body := getJSON(t, r, "/api/connections", fiber.StatusOK)
	conns := body["connections"].([]interface{})
	assert.Len(t, conns, 1)

	conn := conns[0].(map[string]interface{})
	assert.Equal(t, "conn-1", conn["connection_id"])
	assert.Equal(t, domain.StatusOnline, conn["status"])
}

func TestRoomDetail(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")
	assert.NoError(t, broker.Join("conn-1", "room-1", "alice", nil))
	_, err := broker.Send("conn-1", domain.MessageData{Content: "hello", RoomID: "room-1"})
	assert.NoError(t, err)

	body := getJSON(t, r, "/api/rooms/room-1", fiber.StatusOK)
	assert.Equal(t, "room-1", body["id"])
	assert.Equal(t, float64(1), body["user_count"])
	assert.Len(t, body["messages"].([]interface{}), 1)

	body = getJSON(t, r, "/api/rooms/no-such-room", fiber.StatusNotFound)
	assert.Equal(t, "Room not found", body["error"])
}

func TestRoomMessagesLimit(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")
	assert.NoError(t, broker.Join("conn-1", "room-1", "alice", nil))
	for i := 0; i < 5; i++ {
		_, err := broker.Send("conn-1", domain.MessageData{Content: "hello", RoomID: "room-1"})
		assert.NoError(t, err)
	}

	body := getJSON(t, r, "/api/rooms/room-1/messages?limit=2", fiber.StatusOK)
	assert.Len(t, body["messages"].([]interface{}), 2)

	body = getJSON(t, r, "/api/rooms/room-1/messages", fiber.StatusOK)
	assert.Len(t, body["messages"].([]interface{}), 5)
}

func TestLogs(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")
	assert.NoError(t, broker.Join("conn-1", "room-1", "alice", nil))
	broker.Leave("conn-1", "room-1", "alice")

	body := getJSON(t, r, "/api/logs", fiber.StatusOK)
	assert.Len(t, body["logs"].([]interface{}), 2)

	body = getJSON(t, r, "/api/logs?event=room_join", fiber.StatusOK)
	logs := body["logs"].([]interface{})
	assert.Len(t, logs, 1)
	assert.Equal(t, "room_join", logs[0].(map[string]interface{})["event"])
}

func TestEmit(t *testing.T) {
	r, _ := newTestApp()

	body := postJSON(t, r, "/api/events/emit",
		`{"event":"announce","data":{"a":1},"target":{"room_id":"room-1"}}`,
		fiber.StatusOK)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "room:room-1", body["emitted_to"])

	body = postJSON(t, r, "/api/events/emit", `{"data":{"a":1}}`, fiber.StatusBadRequest)
	assert.NotEmpty(t, body["error"])
}

func TestBroadcast(t *testing.T) {
	r, _ := newTestApp()

	body := postJSON(t, r, "/api/events/broadcast", `{"event":"announce"}`, fiber.StatusOK)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "all", body["emitted_to"])
	assert.Equal(t, float64(0), body["connected_clients"])

	postJSON(t, r, "/api/events/broadcast", `{}`, fiber.StatusBadRequest)
}

func TestNotifyRoom(t *testing.T) {
	r, _ := newTestApp()

	body := postJSON(t, r, "/api/events/notify-room/room-1",
		`{"title":"maintenance","message":"restart at noon"}`,
		fiber.StatusOK)
	assert.Equal(t, true, body["success"])

	notification := body["notification"].(map[string]interface{})
	assert.Equal(t, "maintenance", notification["title"])
	assert.Equal(t, "info", notification["type"])

	postJSON(t, r, "/api/events/notify-room/room-1", `{"title":"no body"}`, fiber.StatusBadRequest)
}

func TestDisconnectUnknownConnection(t *testing.T) {
	r, _ := newTestApp()

	body := postJSON(t, r, "/api/events/disconnect/no-such-conn", `{"reason":"kicked"}`, fiber.StatusNotFound)
	assert.NotEmpty(t, body["error"])
}

func TestDisconnectRegisteredConnection(t *testing.T) {
	r, broker := newTestApp()
	broker.Connect("conn-1")

	body := postJSON(t, r, "/api/events/disconnect/conn-1", "", fiber.StatusOK)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Server requested disconnect", body["reason"])
}
