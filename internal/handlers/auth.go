package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/jjenkins/liturgical/internal/apperr"
)

const adminRealm = "Calendario Liturgico"

// AdminAuth protects the admin routes with HTTP basic auth against a bcrypt
// hash. With open set every request passes. Rejected requests get the JSON
// envelope and never reach the handler.
func AdminAuth(user, passwordHash string, open bool) fiber.Handler {
	if open {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return basicauth.New(basicauth.Config{
		Realm: adminRealm,
		Authorizer: func(u, p string) bool {
			if passwordHash == "" {
				return false
			}
			userOK := subtle.ConstantTimeCompare([]byte(u), []byte(user)) == 1
			passOK := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(p)) == nil
			return userOK && passOK
		},
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+adminRealm+`"`)
			return writeError(c, fiber.StatusUnauthorized, apperr.ErrUnauthorized.Message, "UNAUTHORIZED")
		},
	})
}
