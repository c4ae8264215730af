package app

import (
	"time"

	"websocket_relay_service/internal/relay/domain"
	"websocket_relay_service/internal/relay/repository"
	errprocess "websocket_relay_service/pkg/err"

	"github.com/google/uuid"
)

// DefaultHistoryLimit messages returned when the caller gives no limit
const DefaultHistoryLimit = 50

// MessageUseCase 負責處理訊息: validates, stamps and retains relayed messages
type MessageUseCase struct {
	history repository.HistoryRepository
}

// NewMessageUseCase create MessageUseCase
func NewMessageUseCase(history repository.HistoryRepository) *MessageUseCase {
	return &MessageUseCase{
		history: history,
	}
}

// Process build a message from an incoming payload. Messages carrying a room
// id are appended to that room's history; without one they are ephemeral and
// only exist for the fan-out that follows.
func (uc *MessageUseCase) Process(connectionID string, data domain.MessageData) (domain.Message, error) {
	if data.Content == "" {
		return domain.Message{}, errprocess.Invalid("message content is required")
	}

	msgType := data.Type
	if msgType == "" {
		msgType = domain.MessageTypeText
	}
	metadata := data.Metadata
	if metadata == nil {
		metadata = make(map[string]interface{})
	}

	msg := domain.Message{
		ID:           uuid.New().String(),
		ConnectionID: connectionID,
		Content:      data.Content,
		Type:         msgType,
		RoomID:       data.RoomID,
		Metadata:     metadata,
		Timestamp:    time.Now(),
		Edited:       false,
		Reactions:    make(map[string]int),
	}

	if data.RoomID != "" {
		uc.history.Append(data.RoomID, msg)
	}

	return msg, nil
}

// History the most recent limit messages in chronological order,
// limit <= 0 falls back to DefaultHistoryLimit
func (uc *MessageUseCase) History(roomID string, limit int) []domain.Message {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return uc.history.Recent(roomID, limit)
}

// Edit mutate a retained message's content, setting the edited flag and
// timestamp. A miss is reported, not an error.
func (uc *MessageUseCase) Edit(messageID, roomID, newContent string) (domain.Message, bool) {
	return uc.history.Edit(messageID, roomID, newContent)
}

// Delete remove a retained message by id
func (uc *MessageUseCase) Delete(messageID, roomID string) bool {
	return uc.history.Delete(messageID, roomID)
}
