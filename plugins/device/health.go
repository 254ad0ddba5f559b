package device

import (
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Status string
}

func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(Health{Status: "UP"})
}
