package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/logging"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// IdentityProtected verifies the identity provider's ID token. Production
// keys come from the provider's JWKS; IDENTITY_DEV_SECRET switches to HS256
// for local runs and tests. With AUTH_REQUIRED off every request passes.
func IdentityProtected(cfg *config.Config) fiber.Handler {
	if !cfg.AuthRequired {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	jc := jwtware.Config{
		ContextKey:     identity.LocalsKey,
		ErrorHandler:   unauthorized,
		SuccessHandler: verified(cfg.FirebaseProjectID),
	}
	if cfg.IdentityDevSecret != "" {
		jc.SigningKey = jwtware.SigningKey{Key: []byte(cfg.IdentityDevSecret)}
	} else {
		jc.JWKSetURLs = []string{cfg.IdentityJWKSURL}
	}
	return jwtware.New(jc)
}

func unauthorized(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or expired token",
	})
}

// verified runs once the signature checks out. It pins tokens to one project
// (an empty project id skips that) and records the caller for logging.
func verified(projectID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if projectID != "" {
			if err := checkAudience(c, projectID); err != nil {
				return unauthorized(c, err)
			}
		}
		if uid := identity.GetUID(c); uid != "" {
			c.SetUserContext(logging.WithUID(c.UserContext(), uid))
		}
		return c.Next()
	}
}

var errWrongProject = errors.New("token issued for another project")

func checkAudience(c *fiber.Ctx, projectID string) error {
	token, ok := c.Locals(identity.LocalsKey).(*jwt.Token)
	if !ok {
		return errWrongProject
	}
	aud, err := token.Claims.GetAudience()
	if err != nil {
		return err
	}
	if !contains(aud, projectID) {
		return errWrongProject
	}
	iss, err := token.Claims.GetIssuer()
	if err != nil {
		return err
	}
	if iss != firebaseIssuerPrefix+projectID {
		return errWrongProject
	}
	_, err = identity.FromContext(c)
	return err
}
