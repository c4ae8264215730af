package app

import (
	"github.com/stretchr/testify/mock"
)

// MockTransport Mock domain.Transport
type MockTransport struct {
	mock.Mock
}

// SendTo mock deliver to one connection
func (m *MockTransport) SendTo(connectionID, event string, payload interface{}) error {
	args := m.Called(connectionID, event, payload)
	return args.Error(0)
}

// SendToRoom mock deliver to a transport room
func (m *MockTransport) SendToRoom(roomID, event string, payload interface{}, excludeConnectionID string) {
	m.Called(roomID, event, payload, excludeConnectionID)
}

// BroadcastAll mock deliver to every connection
func (m *MockTransport) BroadcastAll(event string, payload interface{}, excludeConnectionID string) {
	m.Called(event, payload, excludeConnectionID)
}

// JoinRoom mock bind connection to transport room
func (m *MockTransport) JoinRoom(connectionID, roomID string) {
	m.Called(connectionID, roomID)
}

// LeaveRoom mock unbind connection from transport room
func (m *MockTransport) LeaveRoom(connectionID, roomID string) {
	m.Called(connectionID, roomID)
}

// ForceDisconnect mock server side close
func (m *MockTransport) ForceDisconnect(connectionID, reason string) error {
	args := m.Called(connectionID, reason)
	return args.Error(0)
}

// ConnectedCount mock live connection count
func (m *MockTransport) ConnectedCount() int {
	args := m.Called()
	return args.Int(0)
}
