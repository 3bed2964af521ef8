package middleware

import (
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const (
	defaultCORSMethods = "GET,POST,PUT,DELETE,OPTIONS"
	defaultCORSHeaders = "Origin,Content-Type,Accept,Authorization,X-Admin-Token"
)

// CORS takes its allow lists from config, falling back to what the web and
// mobile clients send.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: orDefault(cfg.CORSOrigins, "*"),
		AllowMethods: orDefault(cfg.CORSMethods, defaultCORSMethods),
		AllowHeaders: orDefault(cfg.CORSHeaders, defaultCORSHeaders),
		MaxAge:       600,
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
