package handlers

import (
	"net/url"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/gofiber/fiber/v2"
)

type LawyerHandler struct {
	lawyerService *services.LawyerService
}

func NewLawyerHandler(lawyerService *services.LawyerService) *LawyerHandler {
	return &LawyerHandler{lawyerService: lawyerService}
}

// List is the filtered directory. Unparseable filter values are ignored
// rather than rejected.
func (h *LawyerHandler) List(c *fiber.Ctx) error {
	q, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid query string"))
	}
	users, err := h.lawyerService.Search(c.UserContext(), services.ParseLawyerFilter(q))
	if err != nil {
		return apiError(c, err, "Failed to fetch lawyers")
	}
	lawyers := dto.NewLawyerList(users)
	return c.JSON(dto.List(lawyers, len(lawyers)))
}

func (h *LawyerHandler) GetByFirebaseID(c *fiber.Ctx) error {
	user, err := h.lawyerService.GetByFirebaseID(c.UserContext(), c.Params("id"))
	if err != nil {
		return apiError(c, err, "Failed to fetch lawyer")
	}
	return c.JSON(dto.OK(dto.NewLawyerWithUser(user)))
}

func (h *LawyerHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterLawyerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}
	if !callerIs(c, req.FirebaseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("firebaseId does not match the signed-in user"))
	}

	user, err := h.lawyerService.Register(c.UserContext(), services.LawyerRegistration{
		FirebaseID: req.FirebaseID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
	})
	if err != nil {
		return apiError(c, err, "Failed to create lawyer account")
	}

	return c.Status(fiber.StatusCreated).JSON(dto.APIResponse{
		Success: true,
		Message: "Lawyer account created successfully",
		Data: dto.RegisterLawyerResponse{
			UserID:   user.UserID,
			Email:    user.Email,
			LawyerID: user.Lawyer.LawyerID,
		},
	})
}

func (h *LawyerHandler) UpdateProfile(c *fiber.Ctx) error {
	firebaseID := c.Params("id")
	if !callerIs(c, firebaseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("You can only update your own profile"))
	}
	var req dto.UpdateLawyerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid request body"))
	}

	u, l, err := h.lawyerService.UpdateProfile(c.UserContext(), firebaseID, services.ProfileUpdate{
		User: store.UserPatch{
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			PhoneNumber:      req.PhoneNumber,
			BusinessName:     req.BusinessName,
			BusinessIndustry: req.BusinessIndustry,
			City:             req.City,
			State:            req.State,
			Country:          req.Country,
			Location:         req.Location,
		},
		Lawyer: store.LawyerPatch{
			ProfileBio:     req.ProfileBio,
			Specialization: req.Specialization,
		},
	})
	if err != nil {
		return apiError(c, err, "Failed to update profile")
	}

	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Profile updated successfully",
		Data:    dto.UpdateLawyerResponse{User: u, Lawyer: l},
	})
}

// UploadVerificationDocument takes a multipart "document" field.
func (h *LawyerHandler) UploadVerificationDocument(c *fiber.Ctx) error {
	firebaseID := c.Params("id")
	if !callerIs(c, firebaseID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("You can only upload your own documents"))
	}
	fh, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("document file is required"))
	}
	f, err := fh.Open()
	if err != nil {
		return apiError(c, err, "Failed to read document")
	}
	defer f.Close()

	l, err := h.lawyerService.AttachVerificationDocument(c.UserContext(), firebaseID, storage.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return apiError(c, err, "Failed to store verification document")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OK(l))
}

// SetVerification is the admin switch for credentials_verified.
func (h *LawyerHandler) SetVerification(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("Invalid lawyer id"))
	}
	var req dto.SetVerificationRequest
	if err := c.BodyParser(&req); err != nil || req.Verified == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("verified must be true or false"))
	}

	l, err := h.lawyerService.SetVerification(c.UserContext(), id, *req.Verified)
	if err != nil {
		return apiError(c, err, "Failed to update verification")
	}
	return c.JSON(dto.OK(l))
}
