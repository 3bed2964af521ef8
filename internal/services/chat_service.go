package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/events"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
)

// ChatService keeps one thread per client/lawyer pair and appends messages to it.
type ChatService struct {
	store   store.Store
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewChatService(st store.Store, pub events.Publisher, m *metrics.Metrics) *ChatService {
	if pub == nil {
		pub = events.Noop{}
	}
	return &ChatService{store: st, events: pub, metrics: m}
}

type SendResult struct {
	Chat    *models.Chat
	Message *models.ChatMessage
	Created bool
}

// SendFirstMessage opens the thread between sender and receiver, or reuses
// the existing one, and posts text to it. Exactly one party must be a lawyer;
// that party becomes the thread's lawyer side whoever sends.
func (s *ChatService) SendFirstMessage(ctx context.Context, senderID, receiverID uint, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if senderID == receiverID {
		return nil, ErrSameParticipant
	}
	sender, err := s.participant(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.participant(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	var clientID, lawyerID uint
	switch {
	case sender.Role == models.RoleLawyer && receiver.Role != models.RoleLawyer:
		clientID, lawyerID = receiver.UserID, sender.UserID
	case receiver.Role == models.RoleLawyer && sender.Role != models.RoleLawyer:
		clientID, lawyerID = sender.UserID, receiver.UserID
	default:
		return nil, ErrInvalidParticipants
	}

	existing, err := s.store.FindChat(ctx, clientID, lawyerID)
	switch {
	case err == nil:
		return s.appendTo(ctx, existing, senderID, text)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("find chat: %w", err)
	}

	chat := &models.Chat{UserID: clientID, LawyerID: lawyerID, Status: models.ChatStatusPending}
	msg := &models.ChatMessage{SenderID: senderID, Message: text}
	if err := s.store.CreateChatWithMessage(ctx, chat, msg); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("create chat: %w", err)
		}
		// Lost the race to a concurrent first message; join that thread. A
		// replica may not have the winner's row yet.
		existing, ferr := s.store.FindChatPrimary(ctx, clientID, lawyerID)
		if ferr != nil {
			return nil, fmt.Errorf("find chat after conflict: %w", ferr)
		}
		return s.appendTo(ctx, existing, senderID, text)
	}

	res := &SendResult{Chat: chat, Message: msg, Created: true}
	s.announce(ctx, res)
	return res, nil
}

// SendMessage appends to an existing thread. Only its two parties may post.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uint, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	return s.appendTo(ctx, chat, senderID, text)
}

func (s *ChatService) appendTo(ctx context.Context, chat *models.Chat, senderID uint, text string) (*SendResult, error) {
	msg := &models.ChatMessage{ChatID: chat.ChatID, SenderID: senderID, Message: text}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("append message: %w", err)
	}
	chat.UpdatedAt = msg.CreatedAt
	res := &SendResult{Chat: chat, Message: msg}
	s.announce(ctx, res)
	return res, nil
}

func (s *ChatService) announce(ctx context.Context, res *SendResult) {
	s.metrics.ChatMessage(res.Created)
	recipient := res.Chat.UserID
	if recipient == res.Message.SenderID {
		recipient = res.Chat.LawyerID
	}
	err := s.events.MessageCreated(ctx, events.MessageCreated{
		ChatID:      res.Chat.ChatID,
		MessageID:   res.Message.MessageID,
		SenderID:    res.Message.SenderID,
		RecipientID: recipient,
		Message:     res.Message.Message,
		NewThread:   res.Created,
		CreatedAt:   res.Message.CreatedAt,
	})
	if err != nil {
		s.metrics.EventFailed("chat.message.created")
		slog.WarnContext(ctx, "message created event not published", "chat_id", res.Chat.ChatID, "error", err)
	}
}

// ListThreads returns every thread the user takes part in, most recently
// active first.
func (s *ChatService) ListThreads(ctx context.Context, userID uint) ([]models.Chat, error) {
	if _, err := s.participant(ctx, userID); err != nil {
		return nil, err
	}
	chats, err := s.store.ListChatsForParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// ListThreadsByFirebaseID resolves the identity first.
func (s *ChatService) ListThreadsByFirebaseID(ctx context.Context, firebaseID string) ([]models.Chat, error) {
	u, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.ListThreads(ctx, u.UserID)
}

// ListMessages returns the thread oldest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID uint) ([]models.ChatMessage, error) {
	if _, err := s.chat(ctx, chatID); err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// ListMessagesFor is ListMessages for a known reader, who must be one of the
// thread's two parties.
func (s *ChatService) ListMessagesFor(ctx context.Context, chatID, readerID uint) ([]models.ChatMessage, error) {
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(readerID) {
		return nil, ErrNotParticipant
	}
	msgs, err := s.store.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// MarkRead flags the other party's messages as read and returns how many changed.
func (s *ChatService) MarkRead(ctx context.Context, chatID, readerID uint) (int64, error) {
	chat, err := s.chat(ctx, chatID)
	if err != nil {
		return 0, err
	}
	if !chat.HasParticipant(readerID) {
		return 0, ErrNotParticipant
	}
	n, err := s.store.MarkRead(ctx, chatID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return n, nil
}

// ResolveUser maps a firebase id onto the marketplace user id.
func (s *ChatService) ResolveUser(ctx context.Context, firebaseID string) (*models.User, error) {
	u, err := s.store.GetUserByFirebaseID(ctx, firebaseID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrParticipantNotFound
	}
	return u, err
}

func (s *ChatService) participant(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, userID, false)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrParticipantNotFound
	}
	return u, err
}

func (s *ChatService) chat(ctx context.Context, chatID uint) (*models.Chat, error) {
	c, err := s.store.GetChat(ctx, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrChatNotFound
	}
	return c, err
}
