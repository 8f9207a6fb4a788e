// middleware/localonly.go
package middleware

import (
	"log"
	"net"
	"os"

	"github.com/gofiber/fiber/v2"
)

// LocalOnlyMiddleware keeps the scorekeeper single-device: only loopback
// clients may issue intents unless ALLOW_REMOTE=1 is set explicitly.
func LocalOnlyMiddleware() fiber.Handler {
	if os.Getenv("ALLOW_REMOTE") == "1" {
		log.Println("⚠️  ALLOW_REMOTE=1, accepting non-local clients")
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	return func(c *fiber.Ctx) error {
		ip := net.ParseIP(c.IP())
		if ip == nil || !ip.IsLoopback() {
			log.Printf("🚫 [LOCAL_ONLY] rejected %s for %s", c.IP(), c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "this scoreboard only accepts local clients",
			})
		}
		return c.Next()
	}
}
