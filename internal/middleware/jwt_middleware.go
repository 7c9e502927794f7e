package middleware

import (
	"log"
	"strings"

	"gudang/internal/services"

	"github.com/gofiber/fiber/v2"
)

const bearerPrefix = "Bearer "

// AuthRequired rejects requests that do not carry a valid bearer token. On
// success the token claims are stored in the request locals under "user_id"
// and "name".
func AuthRequired(userService *services.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Missing or malformed bearer token",
			})
		}

		claims, err := userService.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			log.Printf("Rejected token: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals("user_id", claims["user_id"])
		c.Locals("name", claims["name"])

		return c.Next()
	}
}
