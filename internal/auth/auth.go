package auth

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "shinejewelry/internal/log"
)

// Verifier checks admin credentials. Injecting it keeps the middleware
// independent of where the secret actually lives.
type Verifier interface {
	Verify(user, pass string) bool
}

type EnvVerifier struct {
	User string
	Hash string
}

// NewEnvVerifier builds a verifier from config. With no ADMIN_PASS_HASH
// set, the dev fallback password is "admin" (hashed at startup so the
// comparison path is identical either way).
func NewEnvVerifier(user, hash string) EnvVerifier {
	if user == "" {
		user = "admin"
	}
	if hash == "" {
		h, _ := bcrypt.GenerateFromPassword([]byte("admin"), 10)
		hash = string(h)
	}
	return EnvVerifier{User: user, Hash: hash}
}

func (v EnvVerifier) Verify(user, pass string) bool {
	if user != v.User {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(v.Hash), []byte(pass)) == nil
}

// RequireAdmin enforces HTTP Basic credentials on admin mutation routes.
// Missing or malformed credentials get 401 with a challenge; wrong
// credentials get 403.
func RequireAdmin(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(hdr, "Basic ") {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Auth required"})
		}
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(hdr, "Basic "))
		if err != nil {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Auth required"})
		}
		user, pass, ok := strings.Cut(string(raw), ":")
		if !ok || !v.Verify(user, pass) {
			applog.Security(c, "admin.auth.fail", map[string]any{"user": user})
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		return c.Next()
	}
}
