package device

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// NewApp builds the HTTP API on top of the device store.
func NewApp(deviceService IDeviceService, checker StatusChecker) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", HealthHandler)

	api := app.Group("/api/v1")

	// GET /api/v1/devices -> all devices with their current status
	api.Get("/devices", GetAllDevices(deviceService, checker))

	// GET /api/v1/devices/:id -> devices carrying that id
	api.Get("/devices/:id", GetDevicesByID(deviceService))

	// POST /api/v1/seed -> insert the fixture devices
	api.Post("/seed", SeedDevicesHandler(deviceService))

	return app
}

func GetAllDevices(deviceService IDeviceService, checker StatusChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), queryTimeout)
		devices, err := deviceService.FindAll(ctx)
		cancel()
		if err != nil {
			log.Errorf("find all devices: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to retrieve devices",
			})
		}
		return c.JSON(CheckAll(c.UserContext(), checker, devices))
	}
}

func GetDevicesByID(deviceService IDeviceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Device id must be an integer",
			})
		}
		devices, err := deviceService.FindByID(c.UserContext(), id)
		if err != nil {
			log.Errorf("find devices by id %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to retrieve devices",
			})
		}
		if len(devices) == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No device with id " + c.Params("id"),
			})
		}
		return c.JSON(devices)
	}
}

func SeedDevicesHandler(deviceService IDeviceService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		inserted, err := Seed(c.UserContext(), deviceService)
		if err != nil {
			log.Errorf("seed devices: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to seed devices",
			})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"inserted": inserted,
		})
	}
}
