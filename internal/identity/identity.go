// Package identity reads the caller's identity-provider token from the request.
package identity

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsKey is where the JWT middleware stores the parsed token.
const LocalsKey = "user"

var ErrNoIdentity = errors.New("no identity token in context")

type Claims struct {
	UID      string
	Email    string
	Verified bool
}

// FromContext returns the claims of a verified token. Firebase puts the uid in
// user_id and mirrors it in sub.
func FromContext(c *fiber.Ctx) (*Claims, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoIdentity
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	uid, _ := claims["user_id"].(string)
	if uid == "" {
		uid, _ = claims["sub"].(string)
	}
	if uid == "" {
		return nil, errors.New("missing uid claim")
	}
	email, _ := claims["email"].(string)
	verified, _ := claims["email_verified"].(bool)
	return &Claims{UID: uid, Email: email, Verified: verified}, nil
}

// GetUID is FromContext for callers that only need the uid. It returns ""
// when the request carries no token.
func GetUID(c *fiber.Ctx) string {
	claims, err := FromContext(c)
	if err != nil {
		return ""
	}
	return claims.UID
}

// firstLoginWindow absorbs the gap the provider leaves between writing the
// creation and sign-in timestamps of a brand-new account.
const firstLoginWindow = time.Second

// IsFirstLogin compares the account metadata timestamps.
func IsFirstLogin(created, lastSignIn time.Time) bool {
	d := lastSignIn.Sub(created)
	if d < 0 {
		d = -d
	}
	return d <= firstLoginWindow
}

var timestampLayouts = []string{time.RFC1123, time.RFC3339Nano, time.RFC3339}

// ParseTimestamp accepts the HTTP-date form the provider SDKs emit and RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
