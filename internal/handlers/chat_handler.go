package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	chatService *services.ChatService
	userService *services.UserService
}

func NewChatHandler(chatService *services.ChatService, userService *services.UserService) *ChatHandler {
	return &ChatHandler{chatService: chatService, userService: userService}
}

// ListThreads accepts a numeric user id or a firebase id. An all-digit value
// is read as a user id unless it is the caller's own firebase id or no user
// has that id; then it is looked up as a firebase id.
func (h *ChatHandler) ListThreads(c *fiber.Ctx) error {
	param := c.Params("id")
	id, perr := strconv.ParseUint(param, 10, 64)
	if perr != nil || identity.GetUID(c) == param {
		return h.threadsByFirebaseID(c, param)
	}
	if ok, aerr := h.actingAs(c, uint(id)); aerr != nil || !ok {
		return h.denied(c, aerr)
	}
	chats, err := h.chatService.ListThreads(c.UserContext(), uint(id))
	if errors.Is(err, services.ErrParticipantNotFound) {
		return h.threadsByFirebaseID(c, param)
	}
	if err != nil {
		return apiError(c, err, "Failed to fetch chats")
	}
	return c.JSON(dto.List(chats, len(chats)))
}

func (h *ChatHandler) threadsByFirebaseID(c *fiber.Ctx, firebaseID string) error {
	if !callerIs(c, firebaseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("You can only list your own chats"))
	}
	chats, err := h.chatService.ListThreadsByFirebaseID(c.UserContext(), firebaseID)
	if err != nil {
		return apiError(c, err, "Failed to fetch chats")
	}
	return c.JSON(dto.List(chats, len(chats)))
}

// CreateChat opens the thread on first contact. When the caller already
// knows the thread it passes chat_id and the message is appended there.
func (h *ChatHandler) CreateChat(c *fiber.Ctx) error {
	var req dto.CreateChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if req.SenderID == 0 || (req.ChatID == nil && req.ReceiverID == 0) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("sender_id and receiver_id are required"))
	}
	if ok, err := h.actingAs(c, req.SenderID); err != nil || !ok {
		return h.denied(c, err)
	}

	var (
		res *services.SendResult
		err error
	)
	if req.ChatID != nil {
		res, err = h.chatService.SendMessage(c.UserContext(), *req.ChatID, req.SenderID, req.Message)
	} else {
		res, err = h.chatService.SendFirstMessage(c.UserContext(), req.SenderID, req.ReceiverID, req.Message)
	}
	if err != nil {
		return apiError(c, err, "Failed to send message")
	}

	status := fiber.StatusOK
	if res.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.OK(dto.SendMessageResponse{
		ChatID:  res.Chat.ChatID,
		Created: res.Created,
		Message: res.Message,
	}))
}

func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	chatID, ok := parseID(c, "chatId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid chat id"))
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil || req.SenderID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("sender_id is required"))
	}
	if ok, err := h.actingAs(c, req.SenderID); err != nil || !ok {
		return h.denied(c, err)
	}

	res, err := h.chatService.SendMessage(c.UserContext(), chatID, req.SenderID, req.Message)
	if err != nil {
		return apiError(c, err, "Failed to send message")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(dto.SendMessageResponse{
		ChatID:  res.Chat.ChatID,
		Message: res.Message,
	}))
}

// ListMessages only serves the thread's parties when the caller is signed in.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	chatID, ok := parseID(c, "chatId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid chat id"))
	}
	var (
		msgs []models.ChatMessage
		err  error
	)
	if uid := identity.GetUID(c); uid != "" {
		u, rerr := h.chatService.ResolveUser(c.UserContext(), uid)
		if rerr != nil {
			if errors.Is(rerr, services.ErrParticipantNotFound) {
				return c.Status(fiber.StatusForbidden).JSON(dto.Fail("You can only read your own chats"))
			}
			return apiError(c, rerr, "Failed to fetch messages")
		}
		msgs, err = h.chatService.ListMessagesFor(c.UserContext(), chatID, u.UserID)
	} else {
		msgs, err = h.chatService.ListMessages(c.UserContext(), chatID)
	}
	if err != nil {
		return apiError(c, err, "Failed to fetch messages")
	}
	return c.JSON(dto.List(msgs, len(msgs)))
}

// MarkRead takes reader_id from the body, or from the token when omitted.
func (h *ChatHandler) MarkRead(c *fiber.Ctx) error {
	chatID, ok := parseID(c, "chatId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid chat id"))
	}
	var req dto.MarkReadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
		}
	}
	if req.ReaderID == 0 {
		uid := identity.GetUID(c)
		if uid == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("reader_id is required"))
		}
		u, err := h.chatService.ResolveUser(c.UserContext(), uid)
		if err != nil {
			return apiError(c, err, "Failed to mark messages read")
		}
		req.ReaderID = u.UserID
	} else if ok, err := h.actingAs(c, req.ReaderID); err != nil || !ok {
		return h.denied(c, err)
	}

	n, err := h.chatService.MarkRead(c.UserContext(), chatID, req.ReaderID)
	if err != nil {
		return apiError(c, err, "Failed to mark messages read")
	}
	return c.JSON(dto.OK(dto.MarkReadResponse{ChatID: chatID, Updated: n}))
}

// actingAs checks that the verified caller is userID. Unknown users pass so
// the service can report them as not found.
func (h *ChatHandler) actingAs(c *fiber.Ctx, userID uint) (bool, error) {
	uid := identity.GetUID(c)
	if uid == "" {
		return true, nil
	}
	u, err := h.userService.GetByID(c.UserContext(), userID, false)
	if err != nil {
		if statusFor(err) == fiber.StatusNotFound {
			return true, nil
		}
		return false, err
	}
	return u.FirebaseID == uid, nil
}

func (h *ChatHandler) denied(c *fiber.Ctx, err error) error {
	if err != nil {
		return apiError(c, err, "Failed to verify sender")
	}
	return c.Status(fiber.StatusForbidden).JSON(dto.Fail("You can only act as yourself"))
}
