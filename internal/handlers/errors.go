package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/registration"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *registration.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrSameParticipant),
		errors.Is(err, services.ErrInvalidParticipants),
		errors.Is(err, services.ErrInvalidDocument):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrLawyerNotFound),
		errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrParticipantNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrNotParticipant):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrFirebaseIDTaken),
		errors.Is(err, services.ErrAccountExists):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// userMessage is the text clients see for err. Domain errors say what went
// wrong; anything else collapses to fallback.
func userMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, services.ErrLawyerNotFound):
		return "Lawyer not found"
	case errors.Is(err, services.ErrChatNotFound):
		return "Chat not found"
	case errors.Is(err, services.ErrEmailTaken):
		return "User with this email already exists"
	case errors.Is(err, services.ErrFirebaseIDTaken):
		return "User with this firebaseId already exists"
	}
	if statusFor(err) == fiber.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}

// apiError writes the lawyer and chat envelope. Server errors carry the
// underlying error text in details.
func apiError(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	resp := dto.Fail(userMessage(err, fallback))
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), fallback, "error", err, "path", c.Path(), "request_id", requestID(c))
		resp.Details = err.Error()
	}
	return c.Status(status).JSON(resp)
}

// plainError writes the bare error body of the user endpoints.
func plainError(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	resp := dto.ErrorResponse{Error: true, Message: userMessage(err, fallback)}
	var verr *registration.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			resp.Fields = append(resp.Fields, dto.FieldError{Field: f.Field, Message: f.Message})
		}
	}
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), fallback, "error", err, "path", c.Path(), "request_id", requestID(c))
	}
	return c.Status(status).JSON(resp)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

// callerIs reports whether the verified caller owns firebaseID. Without a
// token (AUTH_REQUIRED off) every caller passes.
func callerIs(c *fiber.Ctx, firebaseID string) bool {
	uid := identity.GetUID(c)
	return uid == "" || uid == firebaseID
}

func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
