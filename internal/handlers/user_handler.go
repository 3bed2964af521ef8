package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/registration"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves bare records: a user, a list, or null with 404.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.userService.List(c.UserContext())
	if err != nil {
		return plainError(c, err, "Failed to fetch users")
	}
	return c.JSON(users)
}

func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}
	user, err := h.userService.GetByID(c.UserContext(), id, true)
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(nil)
	}
	if err != nil {
		return plainError(c, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

func (h *UserHandler) GetByFirebaseID(c *fiber.Ctx) error {
	user, err := h.userService.GetByFirebaseID(c.UserContext(), c.Params("firebaseId"))
	if errors.Is(err, services.ErrUserNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(nil)
	}
	if err != nil {
		return plainError(c, err, "Failed to fetch user")
	}
	return c.JSON(user)
}

func (h *UserHandler) Register(c *fiber.Ctx) error {
	var draft registration.Draft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if !callerIs(c, draft.FirebaseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "firebaseId does not match the signed-in user",
		})
	}

	user, err := h.userService.Register(c.UserContext(), draft)
	if err != nil {
		return plainError(c, err, "Failed to create user")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ValidateStep is the server side of the multi-step sign-up form.
func (h *UserHandler) ValidateStep(c *fiber.Ctx) error {
	step, err := strconv.Atoi(c.Params("step"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid registration step",
		})
	}
	var draft registration.Draft
	if err := c.BodyParser(&draft); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	res, err := h.userService.ValidateStep(registration.Step(step), draft)
	if err != nil {
		return plainError(c, err, "Failed to validate registration step")
	}
	return c.JSON(res)
}
