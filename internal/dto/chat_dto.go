package dto

import "github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"

// CreateChatRequest opens a thread. With ChatID set the message goes to that
// thread instead.
type CreateChatRequest struct {
	SenderID   uint   `json:"sender_id"`
	ReceiverID uint   `json:"receiver_id"`
	Message    string `json:"message"`
	ChatID     *uint  `json:"chat_id"`
}

type SendMessageRequest struct {
	SenderID uint   `json:"sender_id"`
	Message  string `json:"message"`
}

type MarkReadRequest struct {
	ReaderID uint `json:"reader_id"`
}

type SendMessageResponse struct {
	ChatID  uint                `json:"chat_id"`
	Created bool                `json:"created"`
	Message *models.ChatMessage `json:"message"`
}

type MarkReadResponse struct {
	ChatID  uint  `json:"chat_id"`
	Updated int64 `json:"updated"`
}
