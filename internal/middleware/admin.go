package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired lets a request through when it carries the admin token header
// or a verified identity listed in ADMIN_UIDS.
func AdminRequired(cfg *config.Config) fiber.Handler {
	adminUIDs := parseCSV(cfg.AdminUIDs)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && tokenMatches(c.Get("X-Admin-Token"), cfg.AdminToken) {
			return c.Next()
		}

		uid := identity.GetUID(c)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if contains(adminUIDs, uid) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
