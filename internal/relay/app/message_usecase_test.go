package app

import (
	"fmt"
	"os"
	"testing"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/internal/relay/repository"
	errprocess "websocket_relay_service/pkg/err"
	"websocket_relay_service/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Log = logger.Initialize("relay_test", os.TempDir())
	os.Exit(m.Run())
}

func TestMessageUseCase_ProcessRequiresContent(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(0))

	_, err := uc.Process("conn-1", domain.MessageData{RoomID: "room-1"})

	assert.Error(t, err)
	assert.Equal(t, errprocess.KindInvalidArgument, errprocess.KindOf(err))
}

func TestMessageUseCase_ProcessDefaults(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(0))

	msg, err := uc.Process("conn-1", domain.MessageData{Content: "hello", RoomID: "room-1"})

	assert.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "conn-1", msg.ConnectionID)
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	assert.False(t, msg.Edited)
	assert.NotNil(t, msg.Reactions)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestMessageUseCase_EphemeralWithoutRoom(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(0))

	msg, err := uc.Process("conn-1", domain.MessageData{Content: "hello"})

	assert.NoError(t, err)
	assert.Empty(t, msg.RoomID)
	assert.Empty(t, uc.History("room-1", 0))
}

func TestMessageUseCase_BoundedHistory(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(100))

	for i := 0; i < 101; i++ {
		_, err := uc.Process("conn-1", domain.MessageData{
			Content: fmt.Sprintf("msg-%d", i),
			RoomID:  "room-1",
		})
		assert.NoError(t, err)
	}

	all := uc.History("room-1", 200)
	assert.Len(t, all, 100)
	// oldest evicted first
	assert.Equal(t, "msg-1", all[0].Content)
	assert.Equal(t, "msg-100", all[99].Content)

	recent := uc.History("room-1", 0)
	assert.Len(t, recent, DefaultHistoryLimit)
	assert.Equal(t, "msg-51", recent[0].Content)
	assert.Equal(t, "msg-100", recent[49].Content)
}

func TestMessageUseCase_Edit(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(0))

	msg, _ := uc.Process("conn-1", domain.MessageData{Content: "before", RoomID: "room-1"})

	edited, ok := uc.Edit(msg.ID, "room-1", "after")
	assert.True(t, ok)
	assert.Equal(t, "after", edited.Content)
	assert.True(t, edited.Edited)
	assert.NotNil(t, edited.EditedAt)

	stored := uc.History("room-1", 0)
	assert.Equal(t, "after", stored[0].Content)

	_, ok = uc.Edit("no-such-id", "room-1", "x")
	assert.False(t, ok)
}

func TestMessageUseCase_Delete(t *testing.T) {
	uc := NewMessageUseCase(repository.NewMemoryHistoryRepository(0))

	msg, _ := uc.Process("conn-1", domain.MessageData{Content: "hello", RoomID: "room-1"})

	assert.True(t, uc.Delete(msg.ID, "room-1"))
	assert.Empty(t, uc.History("room-1", 0))
	assert.False(t, uc.Delete(msg.ID, "room-1"))
}
