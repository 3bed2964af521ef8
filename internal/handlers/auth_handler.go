package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Session tells the client whether the signed-in identity already has a
// marketplace account and whether this is its first sign-in.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	var req dto.SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	firebaseID := identity.GetUID(c)
	if firebaseID == "" {
		firebaseID = req.FirebaseID
	}
	if firebaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "firebaseId is required",
		})
	}

	resp := dto.SessionResponse{FirebaseID: firebaseID}
	if req.CreationTime != "" && req.LastSignInTime != "" {
		created, err := identity.ParseTimestamp(req.CreationTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid creationTime",
			})
		}
		lastSignIn, err := identity.ParseTimestamp(req.LastSignInTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid lastSignInTime",
			})
		}
		resp.FirstLogin = identity.IsFirstLogin(created, lastSignIn)
	}

	user, registered, err := h.userService.Session(c.UserContext(), firebaseID)
	if err != nil {
		return plainError(c, err, "Failed to look up session")
	}
	resp.Registered = registered
	if user != nil {
		resp.Role = string(user.Role)
		resp.UserID = user.UserID
	}
	return c.JSON(resp)
}
